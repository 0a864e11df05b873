package envelope

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/binary"
	mrand "math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"cryptokit/internal/stream"
)

var (
	rsaKeyOnce sync.Once
	rsaKey     *rsa.PrivateKey
)

func testRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	rsaKeyOnce.Do(func() {
		var err error
		rsaKey, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
	})
	return rsaKey
}

// plainWrapper stores the session material in the clear and counts unwraps.
type plainWrapper struct {
	unwraps int
	mangle  func([]byte) []byte
}

func (p *plainWrapper) WrapKey(material []byte) ([]byte, error) {
	return append([]byte{}, material...), nil
}

func (p *plainWrapper) UnwrapKey(wrapped []byte) ([]byte, error) {
	p.unwraps++
	out := append([]byte{}, wrapped...)
	if p.mangle != nil {
		out = p.mangle(out)
	}
	return out, nil
}

func run(t *testing.T, tr stream.Transform, data []byte, rng *mrand.Rand) ([]byte, error) {
	t.Helper()
	var out []byte
	var err error
	for len(data) > 0 {
		n := rng.Intn(50)
		if n > len(data) {
			n = len(data)
		}
		out, err = tr.Feed(out, data[:n])
		if err != nil {
			return out, err
		}
		data = data[n:]
	}
	return tr.Finish(out)
}

func seal(t *testing.T, w KeyWrapper, data []byte, rng *mrand.Rand) []byte {
	t.Helper()
	out, err := run(t, NewEncrypter(w), data, rng)
	require.NoError(t, err)
	return out
}

func TestRoundTripRSA(t *testing.T) {
	priv := testRSAKey(t)
	rng := mrand.New(mrand.NewSource(21))

	for _, n := range []int{0, 1, 15, 16, 17, 100, 5000} {
		data := make([]byte, n)
		rng.Read(data)

		ct := seal(t, NewRSAWrapper(&priv.PublicKey), data, rng)
		require.Equal(t, Magic, string(ct[:len(Magic)]))
		wrappedLen := int(binary.BigEndian.Uint16(ct[len(Magic):]))
		require.Equal(t, priv.Size(), wrappedLen)
		require.Len(t, ct, prefixSize+wrappedLen+n+TagSize)

		pt, err := run(t, NewDecrypter(NewRSAUnwrapper(priv)), ct, rng)
		require.NoError(t, err)
		require.True(t, bytes.Equal(data, pt), "length %d", n)
	}
}

func TestRoundTripWriterAndCopy(t *testing.T) {
	w := &plainWrapper{}
	data := bytes.Repeat([]byte("envelope "), 20000)

	var ct bytes.Buffer
	_, err := stream.CopyBuffer(&ct, bytes.NewReader(data), NewEncrypter(w), 777)
	require.NoError(t, err)

	var pt bytes.Buffer
	_, err = stream.CopyBuffer(&pt, &ct, NewDecrypter(w), 5)
	require.NoError(t, err)
	require.Equal(t, data, pt.Bytes())
}

func TestTamperedBodyFailsAuthentication(t *testing.T) {
	w := &plainWrapper{}
	rng := mrand.New(mrand.NewSource(22))
	data := []byte("wire the money to account 12345")
	ct := seal(t, w, data, rng)
	headerLen := prefixSize + KeySize + NonceSize

	for i := headerLen; i < len(ct); i++ {
		tampered := append([]byte{}, ct...)
		tampered[i] ^= 0x80
		_, err := run(t, NewDecrypter(w), tampered, rng)
		require.ErrorIs(t, err, stream.ErrAuthentication, "byte %d", i)
	}
}

func TestWrongPrivateKey(t *testing.T) {
	priv := testRSAKey(t)
	other, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	rng := mrand.New(mrand.NewSource(23))
	ct := seal(t, NewRSAWrapper(&priv.PublicKey), []byte("secret"), rng)
	_, err = run(t, NewDecrypter(NewRSAUnwrapper(other)), ct, rng)
	require.ErrorIs(t, err, ErrUnwrap)
	require.ErrorIs(t, err, stream.ErrKey)
}

func TestBadMagicFailsImmediately(t *testing.T) {
	w := &plainWrapper{}
	d := NewDecrypter(w)

	out, err := d.Feed(nil, []byte("RSA_"))
	require.NoError(t, err)
	require.Empty(t, out)

	_, err = d.Feed(nil, []byte("X"))
	require.ErrorIs(t, err, ErrBadMagic)
	require.ErrorIs(t, err, stream.ErrFormat)
	require.Zero(t, w.unwraps)

	_, err = d.Feed(nil, []byte("more"))
	require.ErrorIs(t, err, ErrBadMagic)
	_, err = d.Finish(nil)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestMalformedStreams(t *testing.T) {
	w := &plainWrapper{}
	ct := seal(t, w, []byte("hello"), mrand.New(mrand.NewSource(24)))
	headerLen := prefixSize + KeySize + NonceSize

	cases := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty", nil, ErrTruncatedHeader},
		{"magic only", []byte(Magic), ErrTruncatedHeader},
		{"partial wrapped key", ct[:headerLen-1], ErrTruncatedHeader},
		{"header only", ct[:headerLen], ErrTruncated},
		{"short tag", ct[:len(ct)-1-5], ErrTruncated},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := NewDecrypter(w)
			out, err := d.Feed(nil, c.in)
			require.NoError(t, err)
			_, err = d.Finish(out)
			require.ErrorIs(t, err, c.want)
			require.ErrorIs(t, err, stream.ErrFormat)
		})
	}
}

func TestUnwrappedLengthMismatch(t *testing.T) {
	enc := &plainWrapper{}
	ct := seal(t, enc, []byte("hello"), mrand.New(mrand.NewSource(25)))

	dec := &plainWrapper{mangle: func(b []byte) []byte { return b[:40] }}
	_, err := NewDecrypter(dec).Feed(nil, ct)
	require.ErrorIs(t, err, ErrSessionKeySize)
}

func TestHeaderSplitAcrossChunks(t *testing.T) {
	w := &plainWrapper{}
	data := []byte("byte at a time")
	ct := seal(t, w, data, mrand.New(mrand.NewSource(26)))

	d := NewDecrypter(w)
	var out []byte
	var err error
	for i := range ct {
		out, err = d.Feed(out, ct[i:i+1])
		require.NoError(t, err)
	}
	out, err = d.Finish(out)
	require.NoError(t, err)
	require.Equal(t, data, out)
	require.Equal(t, 1, w.unwraps)
}

func TestEncrypterMisuse(t *testing.T) {
	e := NewEncrypter(&plainWrapper{})
	_, err := e.Finish(nil)
	require.NoError(t, err)
	_, err = e.Feed(nil, []byte("late"))
	require.ErrorIs(t, err, stream.ErrMisuse)
	_, err = e.Finish(nil)
	require.ErrorIs(t, err, stream.ErrFinished)
}
