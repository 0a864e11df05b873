package dss

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"cryptokit/internal/stream"
)

var (
	// ErrMalformedSignature is returned for a signature that is not a DER
	// SEQUENCE of two INTEGERs.
	ErrMalformedSignature = fmt.Errorf("%w: dss: malformed DER signature", stream.ErrFormat)

	// ErrEmptySignature is returned when a hex signature is empty.
	ErrEmptySignature = fmt.Errorf("%w: dss: empty signature", stream.ErrFormat)

	// ErrInvalidHex is returned when a signature is not valid hex.
	ErrInvalidHex = fmt.Errorf("%w: dss: invalid hex signature", stream.ErrFormat)
)

var (
	sigHexRun  = regexp.MustCompile(`[a-fA-F0-9]{40,}`)
	whitespace = regexp.MustCompile(`\s+`)
)

// MarshalSignature encodes (r, s) as a DER Dss-Sig-Value.
func MarshalSignature(r, s *big.Int) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	return b.Bytes()
}

// ParseSignature decodes a DER Dss-Sig-Value.
func ParseSignature(der []byte) (r, s *big.Int, err error) {
	r, s = new(big.Int), new(big.Int)
	var inner cryptobyte.String
	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() ||
		!inner.ReadASN1Integer(r) || !inner.ReadASN1Integer(s) || !inner.Empty() {
		return nil, nil, ErrMalformedSignature
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return nil, nil, ErrMalformedSignature
	}
	return r, s, nil
}

// ParseSignatureHex decodes a hex signature, tolerating surrounding and
// embedded whitespace and a 0x prefix.
func ParseSignatureHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	s = whitespace.ReplaceAllString(s, "")
	if s == "" {
		return nil, ErrEmptySignature
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return b, nil
}

// ExtractSignatureHex returns the first run of at least 40 hex digits in
// text, such as the body of a signature file.
func ExtractSignatureHex(text string) (string, bool) {
	m := sigHexRun.FindString(text)
	return m, m != ""
}
