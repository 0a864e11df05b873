package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cryptokit/internal/envelope"
	"cryptokit/internal/keys"
)

func newEnvelopeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envelope",
		Short: "Hybrid RSA-OAEP / AES-256-GCM encryption",
	}
	cmd.AddCommand(newEnvelopeEncryptCommand(a), newEnvelopeDecryptCommand(a))
	return cmd
}

func newEnvelopeEncryptCommand(a *app) *cobra.Command {
	var keyArg, outPath string

	cmd := &cobra.Command{
		Use:   "encrypt --key <public.pem> [file]",
		Short: "Encrypt a file or STDIN to an RSA public key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger("envelope")

			pemData, err := keys.ReadPEM(keyArg)
			if err != nil {
				return err
			}
			pub, err := keys.ParseRSAPublicKey(pemData)
			if err != nil {
				return fmt.Errorf("failed to load public key: %w", err)
			}

			n, err := a.pump(argOrStdin(args), outPath, envelope.NewEncrypter(envelope.NewRSAWrapper(pub)))
			if err != nil {
				return fmt.Errorf("encryption failed: %w", err)
			}
			log.Infof("sealed %d bytes to a %d-bit key", n, pub.N.BitLen())
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyArg, "key", "k", "", "RSA public key (PEM text or file path)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default STDOUT)")
	cmd.MarkFlagRequired("key")
	return cmd
}

func newEnvelopeDecryptCommand(a *app) *cobra.Command {
	var keyArg, outPath string

	cmd := &cobra.Command{
		Use:   "decrypt --key <private.pem> [file]",
		Short: "Decrypt a file or STDIN with an RSA private key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger("envelope")

			pemData, err := keys.ReadPEM(keyArg)
			if err != nil {
				return err
			}
			priv, err := keys.ParseRSAPrivateKey(pemData)
			if err != nil {
				return fmt.Errorf("failed to load private key: %w", err)
			}

			n, err := a.pump(argOrStdin(args), outPath, envelope.NewDecrypter(envelope.NewRSAUnwrapper(priv)))
			if err != nil {
				return fmt.Errorf("decryption failed: %w", err)
			}
			log.Infof("opened %d bytes", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyArg, "key", "k", "", "RSA private key (PEM text or file path)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default STDOUT)")
	cmd.MarkFlagRequired("key")
	return cmd
}
