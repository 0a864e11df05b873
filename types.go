package main

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// verifyReport is the text report written by the verify commands.
type verifyReport struct {
	Title  string
	Target string
	Size   uint64
	Fields [][2]string
	OK     bool
}

func (r *verifyReport) result() string {
	if r.OK {
		return "OK"
	}
	return "FAIL"
}

// WriteTo renders the report as "# Key: value" lines.
func (r *verifyReport) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", r.Title)
	fmt.Fprintf(&b, "# Target: %s\n", r.Target)
	fmt.Fprintf(&b, "# Size: %d bytes\n", r.Size)
	for _, f := range r.Fields {
		fmt.Fprintf(&b, "# %s: %s\n", f[0], f[1])
	}
	fmt.Fprintf(&b, "# Result: %s\n", r.result())
	fmt.Fprintf(&b, "# Generated: %s\n", time.Now().UTC().Format(time.RFC3339))
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
