package gcm

import "encoding/binary"

// ghash is the GF(2^128) universal hash over 16-byte blocks, with an
// internal buffer so input may arrive in arbitrary pieces.
type ghash struct {
	h    [2]uint64
	y    [2]uint64
	buf  [blockSize]byte
	nbuf int
}

func (g *ghash) init(h []byte) {
	g.h[0] = binary.BigEndian.Uint64(h[0:])
	g.h[1] = binary.BigEndian.Uint64(h[8:])
}

// mul sets y = y * H in GF(2^128) with the GCM bit ordering.
func (g *ghash) mul() {
	var z0, z1 uint64
	v0, v1 := g.h[0], g.h[1]
	for i := 0; i < 128; i++ {
		var bit uint64
		if i < 64 {
			bit = (g.y[0] >> (63 - i)) & 1
		} else {
			bit = (g.y[1] >> (127 - i)) & 1
		}
		mask := -bit
		z0 ^= v0 & mask
		z1 ^= v1 & mask

		lsb := v1 & 1
		v1 = v1>>1 | v0<<63
		v0 = v0>>1 ^ 0xe100000000000000&-lsb
	}
	g.y[0], g.y[1] = z0, z1
}

func (g *ghash) block(p []byte) {
	g.y[0] ^= binary.BigEndian.Uint64(p[0:])
	g.y[1] ^= binary.BigEndian.Uint64(p[8:])
	g.mul()
}

func (g *ghash) write(p []byte) {
	if g.nbuf > 0 {
		n := copy(g.buf[g.nbuf:], p)
		g.nbuf += n
		p = p[n:]
		if g.nbuf < blockSize {
			return
		}
		g.block(g.buf[:])
		g.nbuf = 0
	}
	for len(p) >= blockSize {
		g.block(p[:blockSize])
		p = p[blockSize:]
	}
	g.nbuf = copy(g.buf[:], p)
}

// finish zero-pads any buffered input, folds in the length block and
// returns the hash.
func (g *ghash) finish(aadLen, ctLen uint64) [blockSize]byte {
	if g.nbuf > 0 {
		clear(g.buf[g.nbuf:])
		g.block(g.buf[:])
		g.nbuf = 0
	}
	g.y[0] ^= aadLen * 8
	g.y[1] ^= ctLen * 8
	g.mul()

	var out [blockSize]byte
	binary.BigEndian.PutUint64(out[0:], g.y[0])
	binary.BigEndian.PutUint64(out[8:], g.y[1])
	return out
}
