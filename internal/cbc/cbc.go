// Package cbc implements a streaming CBC mode with byte padding over a
// 16-byte block cipher.
//
// The stream begins with a header block holding the initialization vector
// encrypted under the block cipher itself, so the decrypting side recovers
// the IV from the stream without a side channel. Data blocks follow, the
// last one padded with n bytes of value n (1 <= n <= 16). Block-aligned
// input therefore gains one full padding block.
package cbc

import (
	"crypto/cipher"
	"crypto/subtle"
	"fmt"

	"cryptokit/internal/stream"
)

// BlockSize is the only supported cipher block size.
const BlockSize = 16

var (
	// ErrBlockSize is returned when the cipher does not use 16-byte blocks.
	ErrBlockSize = fmt.Errorf("%w: cbc: cipher block size must be %d", stream.ErrMisuse, BlockSize)

	// ErrIVSize is returned when the IV is not exactly one block.
	ErrIVSize = fmt.Errorf("%w: cbc: IV must be %d bytes", stream.ErrMisuse, BlockSize)

	// ErrMissingHeader is returned when the ciphertext ends before the
	// encrypted IV header is complete.
	ErrMissingHeader = fmt.Errorf("%w: cbc: missing header", stream.ErrFormat)

	// ErrMisaligned is returned when the ciphertext after the header is not
	// a whole number of blocks.
	ErrMisaligned = fmt.Errorf("%w: cbc: ciphertext is not aligned to block size", stream.ErrFormat)

	// ErrNoData is returned when the header is not followed by any block.
	ErrNoData = fmt.Errorf("%w: cbc: no ciphertext blocks after header", stream.ErrFormat)

	// ErrPadLength is returned when the final pad length byte is 0 or
	// greater than the block size.
	ErrPadLength = fmt.Errorf("%w: cbc: invalid padding length", stream.ErrFormat)

	// ErrPadBytes is returned when the pad bytes disagree with the pad length.
	ErrPadBytes = fmt.Errorf("%w: cbc: invalid padding bytes", stream.ErrFormat)
)

func checkBlock(b cipher.Block) error {
	if b.BlockSize() != BlockSize {
		return ErrBlockSize
	}
	return nil
}

func xorBlock(dst, a, b []byte) {
	subtle.XORBytes(dst[:BlockSize], a[:BlockSize], b[:BlockSize])
}

// Pad appends the padding for a message whose unprocessed tail is buf.
func Pad(buf []byte) []byte {
	n := BlockSize - len(buf)%BlockSize
	for i := 0; i < n; i++ {
		buf = append(buf, byte(n))
	}
	return buf
}

// Unpad validates the padding of a final decrypted block and returns the
// message bytes it carries.
func Unpad(block []byte) ([]byte, error) {
	if len(block) == 0 || len(block)%BlockSize != 0 {
		return nil, ErrMisaligned
	}
	n := int(block[len(block)-1])
	if n < 1 || n > BlockSize {
		return nil, fmt.Errorf("%w: %d", ErrPadLength, n)
	}
	for _, c := range block[len(block)-n:] {
		if int(c) != n {
			return nil, ErrPadBytes
		}
	}
	return block[:len(block)-n], nil
}
