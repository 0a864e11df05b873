// Package rc5 implements the RC5 block cipher with 64-bit words
// (RC5-64/r/b), giving a 16-byte block and a configurable round count.
package rc5

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"strings"

	"cryptokit/internal/md5"
	"cryptokit/internal/stream"
)

const (
	// BlockSize is the RC5-64 block size in bytes.
	BlockSize = 16

	// DefaultRounds is the round count used when none is configured.
	DefaultRounds = 20

	// MaxRounds bounds the schedule size.
	MaxRounds = 255

	// KeySize is the size of a key derived by KeyFromPassphrase.
	KeySize = md5.Size

	wordBytes = 8
)

// Magic constants for w = 64: Odd((e-2)*2^64) and Odd((phi-1)*2^64).
const (
	p64 uint64 = 0xB7E151628AED2A6B
	q64 uint64 = 0x9E3779B97F4A7C15
)

var (
	// ErrInvalidRounds is returned for a round count outside [0, MaxRounds].
	ErrInvalidRounds = fmt.Errorf("%w: rc5: invalid round count", stream.ErrKey)

	// ErrEmptyPassphrase is returned by KeyFromPassphrase for a blank passphrase.
	ErrEmptyPassphrase = fmt.Errorf("%w: rc5: empty passphrase", stream.ErrKey)
)

// Schedule is an expanded RC5-64 key. It is immutable after NewSchedule and
// safe for concurrent use. Schedule implements crypto/cipher.Block.
type Schedule struct {
	s      []uint64
	rounds int
}

// NewSchedule expands key into a schedule of 2*rounds+2 words.
func NewSchedule(key []byte, rounds int) (*Schedule, error) {
	if rounds < 0 || rounds > MaxRounds {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRounds, rounds)
	}

	c := (len(key) + wordBytes - 1) / wordBytes
	if c == 0 {
		c = 1
	}
	l := make([]uint64, c)
	for i := len(key) - 1; i >= 0; i-- {
		l[i/wordBytes] = l[i/wordBytes]<<8 + uint64(key[i])
	}

	t := 2*rounds + 2
	s := make([]uint64, t)
	s[0] = p64
	for i := 1; i < t; i++ {
		s[i] = s[i-1] + q64
	}

	var a, b uint64
	i, j := 0, 0
	for k := 0; k < 3*max(t, c); k++ {
		s[i] = bits.RotateLeft64(s[i]+a+b, 3)
		a = s[i]
		l[j] = bits.RotateLeft64(l[j]+a+b, int((a+b)&63))
		b = l[j]
		i = (i + 1) % t
		j = (j + 1) % c
	}
	clear(l)

	return &Schedule{s: s, rounds: rounds}, nil
}

// Rounds returns the round count of the schedule.
func (k *Schedule) Rounds() int {
	return k.rounds
}

// BlockSize implements cipher.Block.
func (k *Schedule) BlockSize() int {
	return BlockSize
}

// Encrypt encrypts the first block of src into dst. dst and src may overlap
// entirely.
func (k *Schedule) Encrypt(dst, src []byte) {
	if len(src) < BlockSize || len(dst) < BlockSize {
		panic("rc5: input not full block")
	}
	a := binary.LittleEndian.Uint64(src[0:])
	b := binary.LittleEndian.Uint64(src[8:])

	a += k.s[0]
	b += k.s[1]
	for i := 1; i <= k.rounds; i++ {
		a = bits.RotateLeft64(a^b, int(b&63)) + k.s[2*i]
		b = bits.RotateLeft64(b^a, int(a&63)) + k.s[2*i+1]
	}

	binary.LittleEndian.PutUint64(dst[0:], a)
	binary.LittleEndian.PutUint64(dst[8:], b)
}

// Decrypt decrypts the first block of src into dst. dst and src may overlap
// entirely.
func (k *Schedule) Decrypt(dst, src []byte) {
	if len(src) < BlockSize || len(dst) < BlockSize {
		panic("rc5: input not full block")
	}
	a := binary.LittleEndian.Uint64(src[0:])
	b := binary.LittleEndian.Uint64(src[8:])

	for i := k.rounds; i >= 1; i-- {
		b = bits.RotateLeft64(b-k.s[2*i+1], -int(a&63)) ^ a
		a = bits.RotateLeft64(a-k.s[2*i], -int(b&63)) ^ b
	}
	b -= k.s[1]
	a -= k.s[0]

	binary.LittleEndian.PutUint64(dst[0:], a)
	binary.LittleEndian.PutUint64(dst[8:], b)
}

// KeyFromPassphrase derives a 16-byte key as the MD5 digest of the
// whitespace-trimmed passphrase.
func KeyFromPassphrase(passphrase []byte) ([]byte, error) {
	p := strings.TrimSpace(string(passphrase))
	if p == "" {
		return nil, ErrEmptyPassphrase
	}
	sum := md5.Sum([]byte(p))
	return sum[:], nil
}
