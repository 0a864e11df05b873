package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"cryptokit/internal/md5"
)

var (
	errVerifyFailed = errors.New("verification failed")

	md5HexRun = regexp.MustCompile(`[a-fA-F0-9]{32}`)
)

func argOrStdin(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// digestFile streams path (or STDIN) through the MD5 engine.
func (a *app) digestFile(path string) (string, uint64, error) {
	in, _, err := openInput(path)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	d := md5.New()
	if _, err := io.CopyBuffer(d, in, make([]byte, a.cfg.IO.BufferSize)); err != nil {
		return "", 0, fmt.Errorf("failed to read input: %w", err)
	}
	size := d.Len()
	sum, err := d.FinalizeHex()
	return sum, size, err
}

func newMD5Command(a *app) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "md5 [file]",
		Short: "Print the MD5 digest of a file, STDIN or a string",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger("md5")

			if cmd.Flags().Changed("text") {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", md5.SumHex(text))
				return nil
			}

			path := argOrStdin(args)
			sum, size, err := a.digestFile(path)
			if err != nil {
				return err
			}
			log.Infof("digested %d bytes", size)

			name := "-"
			if path != "" {
				name = path
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "digest this string instead of a file")

	cmd.AddCommand(newMD5VerifyCommand(a))
	return cmd
}

func newMD5VerifyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file> <md5file>",
		Short: "Check a file against the first MD5 hex digest found in md5file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger("md5")

			b, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read md5 file: %w", err)
			}
			expected := strings.ToLower(md5HexRun.FindString(string(b)))
			if expected == "" {
				return fmt.Errorf("MD5 hex not found in %s", args[1])
			}

			actual, size, err := a.digestFile(args[0])
			if err != nil {
				return err
			}

			report := &verifyReport{
				Title:  "MD5 Verify",
				Target: filepath.Base(args[0]),
				Size:   size,
				Fields: [][2]string{
					{"MD5 file", filepath.Base(args[1])},
					{"Expected", expected},
					{"Actual", actual},
				},
				OK: actual == expected,
			}
			if _, err := report.WriteTo(cmd.OutOrStdout()); err != nil {
				return err
			}
			if !report.OK {
				log.Warningf("digest mismatch for %s", args[0])
				return errVerifyFailed
			}
			return nil
		},
	}
}
