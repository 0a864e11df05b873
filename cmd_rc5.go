package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cryptokit/internal/cbc"
)

func newRC5Command(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rc5",
		Short: "Encrypt or decrypt with a passphrase using RC5-CBC",
	}
	cmd.AddCommand(newRC5EncryptCommand(a), newRC5DecryptCommand(a))
	return cmd
}

func newRC5EncryptCommand(a *app) *cobra.Command {
	var (
		outPath  string
		secureIV bool
	)

	cmd := &cobra.Command{
		Use:   "encrypt [file]",
		Short: "Encrypt a file or STDIN",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger("rc5")

			passphrase, err := getPassphrase(true)
			if err != nil {
				return fmt.Errorf("failed to get passphrase: %w", err)
			}
			defer zeroBytes(passphrase)

			schedule, err := deriveSchedule(passphrase, a.cfg.RC5.Rounds)
			if err != nil {
				return err
			}
			enc, err := cbc.NewEncrypter(schedule, newIV(secureIV))
			if err != nil {
				return err
			}

			n, err := a.pump(argOrStdin(args), outPath, enc)
			if err != nil {
				return fmt.Errorf("encryption failed: %w", err)
			}
			log.Infof("encrypted %d bytes with %d rounds", n, schedule.Rounds())
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default STDOUT)")
	cmd.Flags().BoolVar(&secureIV, "secure-iv", false, "draw the IV from the system CSPRNG")
	return cmd
}

func newRC5DecryptCommand(a *app) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "decrypt [file]",
		Short: "Decrypt a file or STDIN",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger("rc5")

			passphrase, err := getPassphrase(false)
			if err != nil {
				return fmt.Errorf("failed to get passphrase: %w", err)
			}
			defer zeroBytes(passphrase)

			schedule, err := deriveSchedule(passphrase, a.cfg.RC5.Rounds)
			if err != nil {
				return err
			}
			dec, err := cbc.NewDecrypter(schedule)
			if err != nil {
				return err
			}

			n, err := a.pump(argOrStdin(args), outPath, dec)
			if err != nil {
				return fmt.Errorf("decryption failed (wrong passphrase or corrupted data): %w", err)
			}
			log.Infof("decrypted %d bytes", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default STDOUT)")
	return cmd
}
