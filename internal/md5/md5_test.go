package md5

import (
	stdmd5 "crypto/md5"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"cryptokit/internal/stream"
)

func TestSumHexRFC1321(t *testing.T) {
	vectors := []struct {
		in   string
		want string
	}{
		{"", "d41d8cd98f00b204e9800998ecf8427e"},
		{"a", "0cc175b9c0f1b6a831c399e269772661"},
		{"abc", "900150983cd24fb0d6963f7d28e17f72"},
		{"message digest", "f96b697d7cb7938d525a2f31aaf161d0"},
		{"abcdefghijklmnopqrstuvwxyz", "c3fcd3d76192e4007dfb496cca67e13b"},
		{"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789", "d174ab98d277d9f5a5611c2c9f419d9f"},
		{strings.Repeat("1234567890", 8), "57edf4a22be3c955ac49da2e2107b67a"},
	}
	for _, v := range vectors {
		require.Equal(t, v.want, SumHex(v.in), "md5(%q)", v.in)
	}
}

func TestMatchesStdlibAcrossBlockBoundaries(t *testing.T) {
	for n := 0; n <= 3*BlockSize+1; n++ {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i * 7)
		}
		require.Equal(t, stdmd5.Sum(data), Sum(data), "length %d", n)
	}
}

func TestChunkSplittingIsIrrelevant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data := make([]byte, 10000)
	rng.Read(data)
	want := stdmd5.Sum(data)

	for trial := 0; trial < 50; trial++ {
		d := New()
		rest := data
		for len(rest) > 0 {
			n := rng.Intn(200)
			if n > len(rest) {
				n = len(rest)
			}
			_, err := d.Write(rest[:n])
			require.NoError(t, err)
			rest = rest[n:]
		}
		require.EqualValues(t, len(data), d.Len())
		got, err := d.Finalize()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestUseAfterFinalize(t *testing.T) {
	d := New()
	d.Write([]byte("abc"))
	hex, err := d.FinalizeHex()
	require.NoError(t, err)
	require.Equal(t, "900150983cd24fb0d6963f7d28e17f72", hex)

	_, err = d.Write([]byte("more"))
	require.ErrorIs(t, err, ErrFinalized)
	require.True(t, errors.Is(err, stream.ErrMisuse))

	_, err = d.Finalize()
	require.ErrorIs(t, err, stream.ErrMisuse)
}
