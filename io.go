package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cryptokit/internal/stream"
)

// openInput opens path for reading, or STDIN for "" and "-".
func openInput(path string) (io.ReadCloser, string, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open input: %w", err)
	}
	return f, filepath.Base(path), nil
}

// output is a destination that only becomes visible once committed. File
// outputs are written to a temporary file beside the target and renamed
// into place, so a stream that fails to finish leaves nothing behind.
type output struct {
	f     *os.File
	final string
	w     *bufio.Writer
}

// createOutput prepares path for writing, or STDOUT for "" and "-".
func createOutput(path string, bufSize int) (*output, error) {
	if path == "" || path == "-" {
		return &output{w: stream.NewBufferedWriter(os.Stdout, bufSize)}, nil
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return &output{
		f:     f,
		final: path,
		w:     stream.NewBufferedWriter(f, bufSize),
	}, nil
}

// Write implements io.Writer.
func (o *output) Write(p []byte) (int, error) {
	return o.w.Write(p)
}

// Commit flushes the output and moves it into place.
func (o *output) Commit() error {
	if err := o.w.Flush(); err != nil {
		o.Abort()
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if o.f == nil {
		return nil
	}
	if err := o.f.Close(); err != nil {
		os.Remove(o.f.Name())
		return fmt.Errorf("failed to finalize output: %w", err)
	}
	if err := os.Rename(o.f.Name(), o.final); err != nil {
		os.Remove(o.f.Name())
		return fmt.Errorf("failed to finalize output: %w", err)
	}
	return nil
}

// Abort discards a file output. Bytes already flushed to STDOUT cannot be
// recalled.
func (o *output) Abort() {
	if o.f == nil {
		return
	}
	o.f.Close()
	os.Remove(o.f.Name())
}

// pump drives t from inPath to outPath and commits the output only if the
// transform finishes cleanly. It returns the number of input bytes.
func (a *app) pump(inPath, outPath string, t stream.Transform) (int64, error) {
	in, _, err := openInput(inPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := createOutput(outPath, a.cfg.IO.BufferSize)
	if err != nil {
		return 0, err
	}

	n, err := stream.CopyBuffer(out, in, t, a.cfg.IO.BufferSize)
	if err != nil {
		out.Abort()
		return n, err
	}
	return n, out.Commit()
}
