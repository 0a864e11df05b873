package cbc

import (
	"crypto/cipher"

	"cryptokit/internal/stream"
)

// Decrypter is the decrypting half of the stream. It implements
// stream.Transform.
//
// The most recently decrypted block is always held back as pending, since
// only Finish can tell whether it carries the padding.
type Decrypter struct {
	b          cipher.Block
	prev       [BlockSize]byte
	buf        [BlockSize]byte
	nbuf       int
	header     bool
	pending    [BlockSize]byte
	hasPending bool
	state      stream.State
}

// NewDecrypter returns a Decrypter for b.
func NewDecrypter(b cipher.Block) (*Decrypter, error) {
	if err := checkBlock(b); err != nil {
		return nil, err
	}
	return &Decrypter{b: b}, nil
}

func (d *Decrypter) consume(dst, c []byte) []byte {
	if !d.header {
		d.b.Decrypt(d.prev[:], c)
		d.header = true
		return dst
	}
	if d.hasPending {
		dst = append(dst, d.pending[:]...)
	}
	d.b.Decrypt(d.pending[:], c)
	xorBlock(d.pending[:], d.pending[:], d.prev[:])
	copy(d.prev[:], c)
	d.hasPending = true
	return dst
}

// Feed implements stream.Transform.
func (d *Decrypter) Feed(dst, src []byte) ([]byte, error) {
	if err := d.state.Check(); err != nil {
		return dst, err
	}
	if d.nbuf > 0 {
		n := copy(d.buf[d.nbuf:], src)
		d.nbuf += n
		src = src[n:]
		if d.nbuf < BlockSize {
			return dst, nil
		}
		dst = d.consume(dst, d.buf[:])
		d.nbuf = 0
	}
	for len(src) >= BlockSize {
		dst = d.consume(dst, src[:BlockSize])
		src = src[BlockSize:]
	}
	d.nbuf = copy(d.buf[:], src)
	return dst, nil
}

// Finish validates and strips the padding of the pending block.
func (d *Decrypter) Finish(dst []byte) ([]byte, error) {
	if err := d.state.Close(); err != nil {
		return dst, err
	}
	defer func() {
		d.pending = [BlockSize]byte{}
		d.hasPending = false
	}()

	switch {
	case !d.header:
		return dst, d.state.Fail(ErrMissingHeader)
	case d.nbuf != 0:
		return dst, d.state.Fail(ErrMisaligned)
	case !d.hasPending:
		return dst, d.state.Fail(ErrNoData)
	}
	last, err := Unpad(d.pending[:])
	if err != nil {
		return dst, d.state.Fail(err)
	}
	return append(dst, last...), nil
}
