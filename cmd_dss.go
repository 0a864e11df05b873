package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cryptokit/internal/dss"
	"cryptokit/internal/keys"
)

func newDSSCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dss",
		Short: "Sign and verify with DSA over SHA-1",
	}
	cmd.AddCommand(newDSSSignCommand(a), newDSSVerifyCommand(a))
	return cmd
}

// feedData writes either text or the contents of path (STDIN for "") into w,
// returning the name to report.
func (a *app) feedData(w io.Writer, cmd *cobra.Command, text string, args []string) (string, error) {
	if cmd.Flags().Changed("text") {
		if len(args) != 0 {
			return "", errors.New("--text and a file argument are mutually exclusive")
		}
		_, err := io.WriteString(w, text)
		return "text", err
	}

	in, name, err := openInput(argOrStdin(args))
	if err != nil {
		return "", err
	}
	defer in.Close()

	if _, err := io.CopyBuffer(w, in, make([]byte, a.cfg.IO.BufferSize)); err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return name, nil
}

func newDSSSignCommand(a *app) *cobra.Command {
	var keyArg, outPath, text string

	cmd := &cobra.Command{
		Use:   "sign --key <private.pem> [file]",
		Short: "Sign a file, STDIN or a string and print the hex DER signature",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger("dss")

			pemData, err := keys.ReadPEM(keyArg)
			if err != nil {
				return err
			}
			priv, err := keys.ParseDSAPrivateKey(pemData)
			if err != nil {
				return fmt.Errorf("failed to load private key: %w", err)
			}

			signer := dss.NewSigner(dss.NewDSASigner(priv))
			if _, err := a.feedData(signer, cmd, text, args); err != nil {
				return err
			}
			sig, err := signer.Finish(nil)
			if err != nil {
				return err
			}

			out, err := createOutput(outPath, a.cfg.IO.BufferSize)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(out, "%s\n", hex.EncodeToString(sig)); err != nil {
				out.Abort()
				return err
			}
			if err := out.Commit(); err != nil {
				return err
			}
			log.Infof("signed %d bytes", signer.Size())
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyArg, "key", "k", "", "DSA private key (PEM text or file path)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "signature file (default STDOUT)")
	cmd.Flags().StringVarP(&text, "text", "t", "", "sign this string instead of a file")
	cmd.MarkFlagRequired("key")
	return cmd
}

// loadSignature returns the DER signature given inline or in a signature
// file.
func loadSignature(inline, sigPath string) ([]byte, error) {
	switch {
	case inline != "" && sigPath != "":
		return nil, errors.New("--signature and --sig are mutually exclusive")
	case inline != "":
		return dss.ParseSignatureHex(inline)
	case sigPath != "":
		b, err := os.ReadFile(sigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read signature file: %w", err)
		}
		h, ok := dss.ExtractSignatureHex(string(b))
		if !ok {
			return nil, fmt.Errorf("%w in %s", dss.ErrEmptySignature, sigPath)
		}
		return dss.ParseSignatureHex(h)
	default:
		return nil, errors.New("one of --signature or --sig is required")
	}
}

func newDSSVerifyCommand(a *app) *cobra.Command {
	var keyArg, sigPath, sigHex, text string

	cmd := &cobra.Command{
		Use:   "verify --key <public.pem> (--sig <file> | --signature <hex>) [file]",
		Short: "Verify a DSA signature over a file, STDIN or a string",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger("dss")

			pemData, err := keys.ReadPEM(keyArg)
			if err != nil {
				return err
			}
			pub, err := keys.ParseDSAPublicKey(pemData)
			if err != nil {
				return fmt.Errorf("failed to load public key: %w", err)
			}
			sig, err := loadSignature(sigHex, sigPath)
			if err != nil {
				return err
			}

			verifier := dss.NewVerifier(dss.NewDSAVerifier(pub))
			name, err := a.feedData(verifier, cmd, text, args)
			if err != nil {
				return err
			}
			ok, err := verifier.Verify(sig)
			if err != nil {
				return err
			}

			sigName := "inline"
			if sigPath != "" {
				sigName = filepath.Base(sigPath)
			}
			report := &verifyReport{
				Title:  "DSS Verify",
				Target: name,
				Size:   verifier.Size(),
				Fields: [][2]string{
					{"Algorithm", "DSA with SHA-1"},
					{"Signature", sigName},
					{"Signature bytes", fmt.Sprint(len(sig))},
				},
				OK: ok,
			}
			if _, err := report.WriteTo(cmd.OutOrStdout()); err != nil {
				return err
			}
			if !ok {
				log.Warningf("signature rejected for %s", name)
				return errVerifyFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyArg, "key", "k", "", "DSA public key (PEM text or file path)")
	cmd.Flags().StringVar(&sigPath, "sig", "", "signature file holding hex")
	cmd.Flags().StringVar(&sigHex, "signature", "", "hex signature")
	cmd.Flags().StringVarP(&text, "text", "t", "", "verify this string instead of a file")
	cmd.MarkFlagRequired("key")
	return cmd
}
