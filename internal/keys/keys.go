// Package keys loads, generates and encodes the RSA and DSA key material
// consumed by the envelope and signature streams. Public keys are PEM
// "PUBLIC KEY" (PKIX) blocks and private keys PEM "PRIVATE KEY" (PKCS#8)
// blocks.
package keys

import (
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

const (
	publicKeyType  = "PUBLIC KEY"
	privateKeyType = "PRIVATE KEY"
)

var (
	// ErrNoPEM is returned when input holds no PEM block.
	ErrNoPEM = errors.New("keys: no PEM block found")

	// ErrKeyType is returned when a PEM block holds the wrong kind of key.
	ErrKeyType = errors.New("keys: unexpected key type")

	// ErrMissingInput is returned for blank key input.
	ErrMissingInput = errors.New("keys: missing PEM input")
)

var pemBegin = regexp.MustCompile(`-----BEGIN [^-]+-----`)

// KeyPair is a PEM-encoded keypair.
type KeyPair struct {
	PublicPEM  []byte
	PrivatePEM []byte
}

// ReadPEM returns input itself if it looks like PEM text, otherwise the
// contents of the file it names.
func ReadPEM(input string) ([]byte, error) {
	v := strings.TrimSpace(input)
	if v == "" {
		return nil, ErrMissingInput
	}
	if pemBegin.MatchString(v) {
		return []byte(v), nil
	}
	b, err := os.ReadFile(v)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return b, nil
}

func decodePEM(data []byte) (*pem.Block, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrNoPEM
	}
	return block, nil
}

func encodePEM(typ string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: der})
}

// WriteFiles writes kp to pubPath and privPath, refusing to overwrite.
// The private key file is created with mode 0600.
func (kp *KeyPair) WriteFiles(pubPath, privPath string) error {
	for _, p := range []string{pubPath, privPath} {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("keys: %s already exists", p)
		}
	}
	if err := os.WriteFile(privPath, kp.PrivatePEM, 0600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(pubPath, kp.PublicPEM, 0644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}
	return nil
}
