package main

import (
	"context"
	"fmt"
	"os"

	"github.com/carlmjohnson/versioninfo"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"gopkg.in/op/go-logging.v1"

	"cryptokit/internal/config"
	"cryptokit/internal/log"
)

const (
	// PassphraseEnvVar supplies the RC5 passphrase non-interactively.
	PassphraseEnvVar = "CRYPTOKIT_PASSPHRASE"
)

// app holds state shared by every subcommand.
type app struct {
	configFile string
	logLevel   string

	cfg        *config.Config
	logBackend *log.Backend
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if a.configFile != "" {
		var err error
		if cfg, err = config.LoadFile(a.configFile); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		if err := cfg.FixupAndValidate(); err != nil {
			return err
		}
	}
	backend, err := log.New(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Disable)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logBackend = backend
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.logBackend == nil {
		return nil
	}
	return a.logBackend.Close()
}

func (a *app) logger(module string) *logging.Logger {
	return a.logBackend.GetLogger(module)
}

func newRootCommand() *cobra.Command {
	a := new(app)

	cmd := &cobra.Command{
		Use:   "cryptokit",
		Short: "Streaming MD5, RC5-CBC, RSA/AES-GCM envelope and DSA tools",
		Long: `cryptokit - streaming cryptographic primitives for files of any size

Every command reads its input in chunks and writes output as it goes, so
memory use stays constant regardless of input size. Input defaults to STDIN
and output to STDOUT.`,
		Example: `  # Digest a file
  cryptokit md5 backup.tar

  # Encrypt with a passphrase (RC5-CBC), then decrypt
  cat backup.tar | cryptokit rc5 encrypt > backup.tar.rc5
  cryptokit rc5 decrypt backup.tar.rc5 -o backup.tar

  # Hybrid encryption to an RSA public key
  cryptokit keygen rsa --out alice
  cryptokit envelope encrypt --key alice_public.pem report.pdf -o report.pdf.bin
  cryptokit envelope decrypt --key alice_private.pem report.pdf.bin -o report.pdf

  # DSA signatures
  cryptokit keygen dsa --out bob
  cryptokit dss sign --key bob_private.pem release.tar -o release.tar.sig
  cryptokit dss verify --key bob_public.pem --sig release.tar.sig release.tar`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	cmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "TOML configuration file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (ERROR, WARNING, NOTICE, INFO, DEBUG)")

	cmd.AddCommand(
		newMD5Command(a),
		newRC5Command(a),
		newEnvelopeCommand(a),
		newKeygenCommand(a),
		newDSSCommand(a),
	)
	return cmd
}

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCommand(),
		fang.WithVersion(versioninfo.Short()),
	); err != nil {
		os.Exit(1)
	}
}
