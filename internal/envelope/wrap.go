package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"

	"cryptokit/internal/stream"
)

// ErrUnwrap is returned when the wrapped session key cannot be recovered.
var ErrUnwrap = fmt.Errorf("%w: envelope: failed to unwrap session key", stream.ErrKey)

// KeyWrapper wraps session key material for a recipient.
type KeyWrapper interface {
	WrapKey(material []byte) ([]byte, error)
}

// KeyUnwrapper recovers session key material wrapped by the matching
// KeyWrapper.
type KeyUnwrapper interface {
	UnwrapKey(wrapped []byte) ([]byte, error)
}

// RSAWrapper wraps with RSA-OAEP using SHA-256 for both the label hash and
// MGF1.
type RSAWrapper struct {
	pub  *rsa.PublicKey
	rand io.Reader
}

// NewRSAWrapper returns a KeyWrapper for pub.
func NewRSAWrapper(pub *rsa.PublicKey) *RSAWrapper {
	return &RSAWrapper{pub: pub, rand: rand.Reader}
}

// WrapKey implements KeyWrapper.
func (w *RSAWrapper) WrapKey(material []byte) ([]byte, error) {
	out, err := rsa.EncryptOAEP(sha256.New(), w.rand, w.pub, material, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: envelope: failed to wrap session key: %v", stream.ErrKey, err)
	}
	return out, nil
}

// RSAUnwrapper unwraps with RSA-OAEP/SHA-256.
type RSAUnwrapper struct {
	priv *rsa.PrivateKey
}

// NewRSAUnwrapper returns a KeyUnwrapper for priv.
func NewRSAUnwrapper(priv *rsa.PrivateKey) *RSAUnwrapper {
	return &RSAUnwrapper{priv: priv}
}

// UnwrapKey implements KeyUnwrapper.
func (u *RSAUnwrapper) UnwrapKey(wrapped []byte) ([]byte, error) {
	out, err := rsa.DecryptOAEP(sha256.New(), nil, u.priv, wrapped, nil)
	if err != nil {
		return nil, ErrUnwrap
	}
	return out, nil
}
