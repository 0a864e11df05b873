package cbc

import (
	"crypto/cipher"

	"cryptokit/internal/stream"
)

// Encrypter is the encrypting half of the stream. It implements
// stream.Transform.
type Encrypter struct {
	b      cipher.Block
	prev   [BlockSize]byte
	buf    [BlockSize]byte
	nbuf   int
	header bool
	state  stream.State
}

// NewEncrypter returns an Encrypter chaining from iv.
func NewEncrypter(b cipher.Block, iv []byte) (*Encrypter, error) {
	if err := checkBlock(b); err != nil {
		return nil, err
	}
	if len(iv) != BlockSize {
		return nil, ErrIVSize
	}
	e := &Encrypter{b: b}
	copy(e.prev[:], iv)
	return e, nil
}

func (e *Encrypter) appendHeader(dst []byte) []byte {
	if e.header {
		return dst
	}
	e.header = true
	var hdr [BlockSize]byte
	e.b.Encrypt(hdr[:], e.prev[:])
	return append(dst, hdr[:]...)
}

func (e *Encrypter) appendBlock(dst, p []byte) []byte {
	xorBlock(e.prev[:], p, e.prev[:])
	e.b.Encrypt(e.prev[:], e.prev[:])
	return append(dst, e.prev[:]...)
}

// Feed implements stream.Transform.
func (e *Encrypter) Feed(dst, src []byte) ([]byte, error) {
	if err := e.state.Check(); err != nil {
		return dst, err
	}
	dst = e.appendHeader(dst)

	if e.nbuf > 0 {
		n := copy(e.buf[e.nbuf:], src)
		e.nbuf += n
		src = src[n:]
		if e.nbuf < BlockSize {
			return dst, nil
		}
		dst = e.appendBlock(dst, e.buf[:])
		e.nbuf = 0
	}
	for len(src) >= BlockSize {
		dst = e.appendBlock(dst, src[:BlockSize])
		src = src[BlockSize:]
	}
	e.nbuf = copy(e.buf[:], src)
	return dst, nil
}

// Finish pads and encrypts the final block.
func (e *Encrypter) Finish(dst []byte) ([]byte, error) {
	if err := e.state.Close(); err != nil {
		return dst, err
	}
	dst = e.appendHeader(dst)
	last := Pad(e.buf[:e.nbuf:BlockSize])
	dst = e.appendBlock(dst, last)
	e.buf = [BlockSize]byte{}
	return dst, nil
}
