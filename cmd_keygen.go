package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cryptokit/internal/keys"
)

func keyPaths(name string) (string, string) {
	return name + "_public.pem", name + "_private.pem"
}

func newKeygenCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate RSA or DSA keypairs",
	}
	cmd.AddCommand(newKeygenRSACommand(a), newKeygenDSACommand(a))
	return cmd
}

func newKeygenRSACommand(a *app) *cobra.Command {
	var (
		name string
		bits int
	)

	cmd := &cobra.Command{
		Use:   "rsa",
		Short: "Generate an RSA keypair for the envelope commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := a.logger("keygen")

			if !cmd.Flags().Changed("bits") {
				bits = a.cfg.RSA.Bits
			}
			_, kp, err := keys.GenerateRSA(bits)
			if err != nil {
				return err
			}
			pubPath, privPath := keyPaths(name)
			if err := kp.WriteFiles(pubPath, privPath); err != nil {
				return err
			}
			log.Noticef("generated %d-bit RSA keypair", bits)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", pubPath, privPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "out", "rsa", "keypair file name prefix")
	cmd.Flags().IntVar(&bits, "bits", keys.DefaultRSABits, "modulus size in bits")
	return cmd
}

func newKeygenDSACommand(a *app) *cobra.Command {
	var name, sizesArg string

	cmd := &cobra.Command{
		Use:   "dsa",
		Short: "Generate a DSA keypair for the dss commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := a.logger("keygen")

			if !cmd.Flags().Changed("sizes") {
				sizesArg = a.cfg.DSA.Sizes
			}
			sizes, err := keys.ParseDSASizes(sizesArg)
			if err != nil {
				return err
			}
			log.Infof("generating %s parameters, this can take a while", sizesArg)
			_, kp, err := keys.GenerateDSA(sizes)
			if err != nil {
				return err
			}
			pubPath, privPath := keyPaths(name)
			if err := kp.WriteFiles(pubPath, privPath); err != nil {
				return err
			}
			log.Noticef("generated %s DSA keypair", sizesArg)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", pubPath, privPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "out", "dsa", "keypair file name prefix")
	cmd.Flags().StringVar(&sizesArg, "sizes", "L2048N256", "parameter sizes (L1024N160, L2048N224, L2048N256, L3072N256)")
	return cmd
}
