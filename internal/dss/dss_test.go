package dss

import (
	"bytes"
	"crypto/dsa"
	"crypto/rand"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"cryptokit/internal/stream"
)

var (
	dsaKeyOnce sync.Once
	dsaKey     *dsa.PrivateKey
)

func testKey(t *testing.T) *dsa.PrivateKey {
	t.Helper()
	dsaKeyOnce.Do(func() {
		k := new(dsa.PrivateKey)
		if err := dsa.GenerateParameters(&k.Parameters, rand.Reader, dsa.L1024N160); err != nil {
			panic(err)
		}
		if err := dsa.GenerateKey(k, rand.Reader); err != nil {
			panic(err)
		}
		dsaKey = k
	})
	return dsaKey
}

func TestSignVerifyStream(t *testing.T) {
	priv := testKey(t)
	data := bytes.Repeat([]byte("signed payload "), 1000)

	var sig bytes.Buffer
	signer := NewSigner(NewDSASigner(priv))
	n, err := stream.CopyBuffer(&sig, bytes.NewReader(data), signer, 333)
	require.NoError(t, err)
	require.EqualValues(t, len(data), n)
	require.EqualValues(t, len(data), signer.Size())
	require.NotEmpty(t, sig.Bytes())

	v := NewVerifier(NewDSAVerifier(&priv.PublicKey))
	for off := 0; off < len(data); off += 1000 {
		end := min(off+1000, len(data))
		_, err := v.Write(data[off:end])
		require.NoError(t, err)
	}
	require.EqualValues(t, len(data), v.Size())
	ok, err := v.Verify(sig.Bytes())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsModifications(t *testing.T) {
	priv := testKey(t)
	data := []byte("pay alice 10")
	sig, err := SignBytes(NewDSASigner(priv), data)
	require.NoError(t, err)

	dv := NewDSAVerifier(&priv.PublicKey)
	ok, err := VerifyBytes(dv, data, sig)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyBytes(dv, []byte("pay alice 99"), sig)
	require.NoError(t, err)
	require.False(t, ok)

	r, s, err := ParseSignature(sig)
	require.NoError(t, err)
	forged, err := MarshalSignature(r, new(big.Int).Add(s, big.NewInt(1)))
	require.NoError(t, err)
	ok, err = VerifyBytes(dv, data, forged)
	require.NoError(t, err)
	require.False(t, ok)

	for _, bad := range [][]byte{nil, {0x30, 0x00}, append(append([]byte{}, sig...), 0x00), sig[:len(sig)-1]} {
		ok, err = VerifyBytes(dv, data, bad)
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestEmptyInput(t *testing.T) {
	priv := testKey(t)
	sig, err := NewSigner(NewDSASigner(priv)).Finish(nil)
	require.NoError(t, err)
	ok, err := NewVerifier(NewDSAVerifier(&priv.PublicKey)).Verify(sig)
	require.NoError(t, err)
	require.True(t, ok)
}

type failingSigner struct{}

func (failingSigner) SignDigest([]byte) ([]byte, error) {
	return nil, errors.New("hsm offline")
}

func TestSignerMisuse(t *testing.T) {
	s := NewSigner(failingSigner{})
	_, err := s.Feed(nil, []byte("data"))
	require.NoError(t, err)
	_, err = s.Finish(nil)
	require.EqualError(t, err, "hsm offline")
	_, err = s.Finish(nil)
	require.EqualError(t, err, "hsm offline")

	v := NewVerifier(NewDSAVerifier(&testKey(t).PublicKey))
	_, err = v.Verify(nil)
	require.NoError(t, err)
	_, err = v.Verify(nil)
	require.ErrorIs(t, err, stream.ErrFinished)
	_, err = v.Write([]byte("late"))
	require.ErrorIs(t, err, stream.ErrMisuse)
}

func TestSignatureDER(t *testing.T) {
	der, err := MarshalSignature(big.NewInt(1), big.NewInt(0x80))
	require.NoError(t, err)
	require.Equal(t, []byte{0x30, 0x07, 0x02, 0x01, 0x01, 0x02, 0x02, 0x00, 0x80}, der)

	r, s, err := ParseSignature(der)
	require.NoError(t, err)
	require.EqualValues(t, 1, r.Int64())
	require.EqualValues(t, 0x80, s.Int64())

	_, _, err = ParseSignature([]byte{0x30, 0x06, 0x02, 0x01, 0x00, 0x02, 0x01, 0x01})
	require.ErrorIs(t, err, ErrMalformedSignature)
}

func TestSignatureHex(t *testing.T) {
	b, err := ParseSignatureHex("  0xDEAD beef\n")
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)

	_, err = ParseSignatureHex(" 0x ")
	require.ErrorIs(t, err, ErrEmptySignature)
	_, err = ParseSignatureHex("abc")
	require.ErrorIs(t, err, ErrInvalidHex)
	_, err = ParseSignatureHex("zz")
	require.ErrorIs(t, err, stream.ErrFormat)

	hexSig := "302c0214" + "0123456789abcdef0123456789abcdef01234567"
	got, ok := ExtractSignatureHex("# DSS signature\n" + hexSig + "\n")
	require.True(t, ok)
	require.Equal(t, hexSig, got)
	_, ok = ExtractSignatureHex("deadbeef")
	require.False(t, ok)
}
