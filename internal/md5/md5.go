// Package md5 implements the MD5 message digest defined in RFC 1321 as an
// incremental accumulator.
//
// MD5 is cryptographically broken. It is used here to derive RC5 keys from
// passphrases and to produce file checksums.
package md5

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"cryptokit/internal/stream"
)

// Size is the size of an MD5 digest in bytes.
const Size = 16

// BlockSize is the block size of MD5 in bytes.
const BlockSize = 64

const (
	init0 = 0x67452301
	init1 = 0xEFCDAB89
	init2 = 0x98BADCFE
	init3 = 0x10325476
)

// ErrFinalized is returned when a Digest is used after Finalize.
var ErrFinalized = fmt.Errorf("%w: md5: digest already finalized", stream.ErrMisuse)

// Digest is the running state of an MD5 computation. The zero value is not
// usable; call New.
type Digest struct {
	s    [4]uint32
	x    [BlockSize]byte
	nx   int
	len  uint64
	done bool
}

// New returns a fresh Digest.
func New() *Digest {
	d := new(Digest)
	d.s = [4]uint32{init0, init1, init2, init3}
	return d
}

// Write folds p into the digest. It never fails before Finalize.
func (d *Digest) Write(p []byte) (int, error) {
	if d.done {
		return 0, ErrFinalized
	}
	nn := len(p)
	d.len += uint64(nn)
	if d.nx > 0 {
		n := copy(d.x[d.nx:], p)
		d.nx += n
		if d.nx == BlockSize {
			block(&d.s, d.x[:])
			d.nx = 0
		}
		p = p[n:]
	}
	for len(p) >= BlockSize {
		block(&d.s, p[:BlockSize])
		p = p[BlockSize:]
	}
	if len(p) > 0 {
		d.nx = copy(d.x[:], p)
	}
	return nn, nil
}

// Len returns the number of bytes written so far.
func (d *Digest) Len() uint64 {
	return d.len
}

// Finalize pads the message, processes the final block(s) and returns the
// digest. The Digest cannot be used afterwards.
func (d *Digest) Finalize() ([Size]byte, error) {
	var out [Size]byte
	if d.done {
		return out, ErrFinalized
	}

	// 0x80, zeros up to 56 mod 64, then the bit length little-endian.
	var tmp [1 + 63 + 8]byte
	tmp[0] = 0x80
	pad := (55 - d.len) % 64
	binary.LittleEndian.PutUint64(tmp[1+pad:], d.len<<3)
	bitLen := d.len
	d.Write(tmp[:1+pad+8])
	d.len = bitLen
	if d.nx != 0 {
		panic("md5: internal error: padding left a partial block")
	}
	d.done = true

	binary.LittleEndian.PutUint32(out[0:], d.s[0])
	binary.LittleEndian.PutUint32(out[4:], d.s[1])
	binary.LittleEndian.PutUint32(out[8:], d.s[2])
	binary.LittleEndian.PutUint32(out[12:], d.s[3])
	d.s = [4]uint32{}
	d.x = [BlockSize]byte{}
	return out, nil
}

// FinalizeHex is Finalize rendered as lowercase hex.
func (d *Digest) FinalizeHex() (string, error) {
	sum, err := d.Finalize()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}

// Sum returns the MD5 digest of data.
func Sum(data []byte) [Size]byte {
	d := New()
	d.Write(data)
	sum, _ := d.Finalize()
	return sum
}

// SumHex returns the lowercase hex MD5 digest of s.
func SumHex(s string) string {
	sum := Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
