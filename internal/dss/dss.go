// Package dss implements streaming DSA signatures over SHA-1 with
// DER-encoded signature values.
//
// The stream only accumulates the digest; the DSA operation itself is
// delegated to a DigestSigner or DigestVerifier at the end.
package dss

import (
	"crypto/dsa"
	"crypto/rand"
	"fmt"
	"hash"
	"io"

	"github.com/tink-crypto/tink-go/v2/subtle"

	"cryptokit/internal/stream"
)

// HashName names the digest signed by this package.
const HashName = "SHA1"

// ErrSign is returned when the signing capability fails.
var ErrSign = fmt.Errorf("%w: dss: signing failed", stream.ErrKey)

// DigestSigner signs a message digest, returning a DER signature.
type DigestSigner interface {
	SignDigest(digest []byte) ([]byte, error)
}

// DigestVerifier checks a DER signature over a message digest. A signature
// that does not verify, including a malformed one, yields false and no
// error.
type DigestVerifier interface {
	VerifyDigest(digest, sig []byte) (bool, error)
}

// DSASigner is a DigestSigner backed by crypto/dsa.
type DSASigner struct {
	priv *dsa.PrivateKey
	rand io.Reader
}

// NewDSASigner returns a DigestSigner for priv.
func NewDSASigner(priv *dsa.PrivateKey) *DSASigner {
	return &DSASigner{priv: priv, rand: rand.Reader}
}

// SignDigest implements DigestSigner.
func (s *DSASigner) SignDigest(digest []byte) ([]byte, error) {
	r, ss, err := dsa.Sign(s.rand, s.priv, digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSign, err)
	}
	return MarshalSignature(r, ss)
}

// DSAVerifier is a DigestVerifier backed by crypto/dsa.
type DSAVerifier struct {
	pub *dsa.PublicKey
}

// NewDSAVerifier returns a DigestVerifier for pub.
func NewDSAVerifier(pub *dsa.PublicKey) *DSAVerifier {
	return &DSAVerifier{pub: pub}
}

// VerifyDigest implements DigestVerifier.
func (v *DSAVerifier) VerifyDigest(digest, sig []byte) (bool, error) {
	r, s, err := ParseSignature(sig)
	if err != nil {
		return false, nil
	}
	return dsa.Verify(v.pub, digest, r, s), nil
}

func newHash() hash.Hash {
	return subtle.GetHashFunc(HashName)()
}

// Signer accumulates a digest over a stream and signs it at Finish. It
// implements stream.Transform; Feed emits nothing and Finish emits the DER
// signature.
type Signer struct {
	h      hash.Hash
	n      uint64
	signer DigestSigner
	state  stream.State
}

// NewSigner returns a Signer delegating to ds.
func NewSigner(ds DigestSigner) *Signer {
	return &Signer{h: newHash(), signer: ds}
}

// Write adds p to the signed data.
func (s *Signer) Write(p []byte) (int, error) {
	if err := s.state.Check(); err != nil {
		return 0, err
	}
	s.n += uint64(len(p))
	return s.h.Write(p)
}

// Feed implements stream.Transform.
func (s *Signer) Feed(dst, src []byte) ([]byte, error) {
	_, err := s.Write(src)
	return dst, err
}

// Finish implements stream.Transform.
func (s *Signer) Finish(dst []byte) ([]byte, error) {
	if err := s.state.Close(); err != nil {
		return dst, err
	}
	sig, err := s.signer.SignDigest(s.h.Sum(nil))
	if err != nil {
		return dst, s.state.Fail(err)
	}
	return append(dst, sig...), nil
}

// Size returns the number of bytes signed so far.
func (s *Signer) Size() uint64 {
	return s.n
}

// Verifier accumulates a digest over candidate data and checks a signature
// against it.
type Verifier struct {
	h        hash.Hash
	n        uint64
	verifier DigestVerifier
	state    stream.State
}

// NewVerifier returns a Verifier delegating to dv.
func NewVerifier(dv DigestVerifier) *Verifier {
	return &Verifier{h: newHash(), verifier: dv}
}

// Write adds p to the candidate data.
func (v *Verifier) Write(p []byte) (int, error) {
	if err := v.state.Check(); err != nil {
		return 0, err
	}
	v.n += uint64(len(p))
	return v.h.Write(p)
}

// Verify reports whether sig is a valid signature over everything written.
// The Verifier cannot be used afterwards.
func (v *Verifier) Verify(sig []byte) (bool, error) {
	if err := v.state.Close(); err != nil {
		return false, err
	}
	ok, err := v.verifier.VerifyDigest(v.h.Sum(nil), sig)
	if err != nil {
		return false, v.state.Fail(err)
	}
	return ok, nil
}

// Size returns the number of bytes written so far.
func (v *Verifier) Size() uint64 {
	return v.n
}

// SignBytes signs data in one call.
func SignBytes(ds DigestSigner, data []byte) ([]byte, error) {
	s := NewSigner(ds)
	s.Write(data)
	return s.Finish(nil)
}

// VerifyBytes verifies sig over data in one call.
func VerifyBytes(dv DigestVerifier, data, sig []byte) (bool, error) {
	v := NewVerifier(dv)
	v.Write(data)
	return v.Verify(sig)
}
