package main

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"syscall"

	"golang.org/x/term"
)

// zeroBytes overwrites a byte slice with zeros
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// getPassphrase returns the RC5 passphrase from the environment or the
// terminal. With confirm set, an interactive passphrase must be typed twice.
func getPassphrase(confirm bool) ([]byte, error) {
	if envPass := os.Getenv(PassphraseEnvVar); envPass != "" {
		return []byte(envPass), nil
	}

	passphrase, err := readPassword("Enter passphrase: ")
	if err != nil {
		return nil, err
	}
	if !confirm {
		return passphrase, nil
	}

	again, err := readPassword("Confirm passphrase: ")
	if err != nil {
		zeroBytes(passphrase)
		return nil, err
	}
	defer zeroBytes(again)

	if !bytes.Equal(passphrase, again) {
		zeroBytes(passphrase)
		return nil, fmt.Errorf("passphrases do not match")
	}
	return passphrase, nil
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	if term.IsTerminal(int(syscall.Stdin)) {
		return term.ReadPassword(int(syscall.Stdin))
	}

	// STDIN carries the data stream, so prompt on the controlling terminal.
	tty, err := os.Open("/dev/tty")
	if err != nil {
		if runtime.GOOS == "windows" {
			return nil, fmt.Errorf("passphrase must be set via %s environment variable when STDIN is piped", PassphraseEnvVar)
		}
		return nil, fmt.Errorf("cannot read passphrase: STDIN is piped and /dev/tty is not available. Set %s environment variable", PassphraseEnvVar)
	}
	defer tty.Close()

	return term.ReadPassword(int(tty.Fd()))
}
