// Package gcm implements AES-256 in Galois/Counter Mode as an incremental
// primitive: ciphertext is produced or consumed chunk by chunk and the
// authentication tag is produced or checked once at the end. Output is
// byte-compatible with crypto/cipher's GCM using a 12-byte nonce, no
// additional data and a 16-byte tag.
//
// WARNING: Opener releases plaintext before the tag is checked. Callers must
// discard everything an Opener produced if Finish fails.
package gcm

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"cryptokit/internal/stream"
)

const (
	// KeySize is the AES-256 key size in bytes.
	KeySize = 32
	// NonceSize is the GCM nonce size in bytes.
	NonceSize = 12
	// TagSize is the GCM authentication tag size in bytes.
	TagSize = 16

	blockSize = 16

	// maxBytes is the GCM plaintext limit of 2^32 - 2 blocks.
	maxBytes = ((1 << 32) - 2) * blockSize
)

var (
	// ErrKeySize is returned for a key that is not KeySize bytes.
	ErrKeySize = fmt.Errorf("%w: gcm: invalid key size", stream.ErrKey)

	// ErrNonceSize is returned for a nonce that is not NonceSize bytes.
	ErrNonceSize = fmt.Errorf("%w: gcm: invalid nonce size", stream.ErrKey)

	// ErrTooLarge is returned when a stream exceeds the GCM length limit.
	ErrTooLarge = fmt.Errorf("%w: gcm: message too large", stream.ErrMisuse)

	// ErrTagSize is returned when the supplied tag is not TagSize bytes.
	ErrTagSize = fmt.Errorf("%w: gcm: invalid tag size", stream.ErrFormat)

	// ErrOpen is returned when the tag does not authenticate the ciphertext.
	ErrOpen = fmt.Errorf("%w: gcm: message authentication failed", stream.ErrAuthentication)
)

type streamer struct {
	ctr     cipher.Stream
	ghash   ghash
	tagMask [blockSize]byte
	n       uint64
	state   stream.State
}

func newStreamer(key, nonce []byte) (*streamer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrKeySize, len(key), KeySize)
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrNonceSize, len(nonce), NonceSize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	s := new(streamer)
	var h [blockSize]byte
	block.Encrypt(h[:], h[:])
	s.ghash.init(h[:])

	// J0 = nonce || 1 masks the tag, data starts at inc32(J0).
	var counter [blockSize]byte
	copy(counter[:], nonce)
	binary.BigEndian.PutUint32(counter[NonceSize:], 1)
	block.Encrypt(s.tagMask[:], counter[:])
	binary.BigEndian.PutUint32(counter[NonceSize:], 2)
	s.ctr = cipher.NewCTR(block, counter[:])
	return s, nil
}

func (s *streamer) account(n int) error {
	s.n += uint64(n)
	if s.n > maxBytes {
		return s.state.Fail(ErrTooLarge)
	}
	return nil
}

func (s *streamer) sum() [TagSize]byte {
	t := s.ghash.finish(0, s.n)
	subtle.XORBytes(t[:], t[:], s.tagMask[:])
	return t
}

// Sealer encrypts a stream.
type Sealer struct {
	s *streamer
}

// NewSealer returns a Sealer for key and nonce. A nonce must never be reused
// with the same key.
func NewSealer(key, nonce []byte) (*Sealer, error) {
	s, err := newStreamer(key, nonce)
	if err != nil {
		return nil, err
	}
	return &Sealer{s: s}, nil
}

// Update encrypts src and appends the ciphertext to dst.
func (e *Sealer) Update(dst, src []byte) ([]byte, error) {
	if err := e.s.state.Check(); err != nil {
		return dst, err
	}
	if err := e.s.account(len(src)); err != nil {
		return dst, err
	}
	ret, out := sliceForAppend(dst, len(src))
	e.s.ctr.XORKeyStream(out, src)
	e.s.ghash.write(out)
	return ret, nil
}

// Finish appends the authentication tag to dst. All ciphertext has already
// been released by Update.
func (e *Sealer) Finish(dst []byte) ([]byte, error) {
	if err := e.s.state.Close(); err != nil {
		return dst, err
	}
	tag := e.s.sum()
	return append(dst, tag[:]...), nil
}

// Opener decrypts a stream.
type Opener struct {
	s *streamer
}

// NewOpener returns an Opener for key and nonce.
func NewOpener(key, nonce []byte) (*Opener, error) {
	s, err := newStreamer(key, nonce)
	if err != nil {
		return nil, err
	}
	return &Opener{s: s}, nil
}

// Update decrypts src, which must not include the tag, and appends the
// unverified plaintext to dst.
func (d *Opener) Update(dst, src []byte) ([]byte, error) {
	if err := d.s.state.Check(); err != nil {
		return dst, err
	}
	if err := d.s.account(len(src)); err != nil {
		return dst, err
	}
	d.s.ghash.write(src)
	ret, out := sliceForAppend(dst, len(src))
	d.s.ctr.XORKeyStream(out, src)
	return ret, nil
}

// Finish checks tag against everything passed to Update.
func (d *Opener) Finish(tag []byte) error {
	if err := d.s.state.Close(); err != nil {
		return err
	}
	if len(tag) != TagSize {
		return d.s.state.Fail(ErrTagSize)
	}
	want := d.s.sum()
	if subtle.ConstantTimeCompare(want[:], tag) != 1 {
		return d.s.state.Fail(ErrOpen)
	}
	return nil
}

// sliceForAppend takes a slice and a requested number of bytes. It returns a
// slice with the contents of the given slice followed by that many bytes and
// a second slice that aliases into it and contains only the extra bytes.
func sliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}
