package rc5

import (
	"crypto/cipher"
	"encoding/hex"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"cryptokit/internal/stream"
)

var _ cipher.Block = (*Schedule)(nil)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestEncryptKnownAnswers(t *testing.T) {
	seq := func(from, n int) []byte {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte(from + i)
		}
		return b
	}
	secret, err := KeyFromPassphrase([]byte("secret"))
	require.NoError(t, err)

	vectors := []struct {
		name   string
		key    []byte
		rounds int
		pt     []byte
		ct     string
	}{
		{"zero key zero block", make([]byte, 16), 20, make([]byte, 16), "4eaf41dd6ab654df1a7b0511e5c39347"},
		{"sequential", seq(0, 16), 20, seq(16, 16), "115034212222619bacb53536c7ce2bda"},
		{"passphrase key", secret, 20, []byte("0123456789abcdef"), "ce25d2f7eb60a7034412701a59da50f7"},
		{"empty key no rounds", nil, 0, make([]byte, 16), "9f09b98d3f6062d9d4d59973d00e0e63"},
	}
	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			k, err := NewSchedule(v.key, v.rounds)
			require.NoError(t, err)

			dst := make([]byte, BlockSize)
			k.Encrypt(dst, v.pt)
			require.Equal(t, v.ct, hex.EncodeToString(dst))

			k.Decrypt(dst, dst)
			require.Equal(t, v.pt, dst)
		})
	}
}

func TestRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, rounds := range []int{0, 1, 2, 12, 20, 32} {
		for trial := 0; trial < 64; trial++ {
			key := make([]byte, 16)
			rng.Read(key)
			k, err := NewSchedule(key, rounds)
			require.NoError(t, err)
			require.Equal(t, rounds, k.Rounds())

			block := make([]byte, BlockSize)
			rng.Read(block)
			ct := make([]byte, BlockSize)
			k.Encrypt(ct, block)
			pt := make([]byte, BlockSize)
			k.Decrypt(pt, ct)
			require.Equal(t, block, pt)
		}
	}
}

func TestVariableKeyLengths(t *testing.T) {
	block := mustHex(t, "00112233445566778899aabbccddeeff")
	for _, n := range []int{0, 1, 7, 8, 9, 16, 31, 64, 255} {
		key := make([]byte, n)
		for i := range key {
			key[i] = byte(i*13 + 1)
		}
		k, err := NewSchedule(key, DefaultRounds)
		require.NoError(t, err)

		ct := make([]byte, BlockSize)
		k.Encrypt(ct, block)
		require.NotEqual(t, block, ct)
		k.Decrypt(ct, ct)
		require.Equal(t, block, ct)
	}
}

func TestInvalidRounds(t *testing.T) {
	for _, r := range []int{-1, MaxRounds + 1} {
		_, err := NewSchedule(make([]byte, 16), r)
		require.ErrorIs(t, err, ErrInvalidRounds)
		require.ErrorIs(t, err, stream.ErrKey)
	}
}

func TestKeyFromPassphrase(t *testing.T) {
	key, err := KeyFromPassphrase([]byte("  secret\n"))
	require.NoError(t, err)
	require.Len(t, key, KeySize)
	require.Equal(t, "5ebe2294ecd0e0f08eab7690d2a6ee69", hex.EncodeToString(key))

	_, err = KeyFromPassphrase([]byte(" \t "))
	require.ErrorIs(t, err, ErrEmptyPassphrase)
}
