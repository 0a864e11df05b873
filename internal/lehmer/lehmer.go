// Package lehmer implements the Park–Miller minimal standard generator.
// It is not cryptographically secure and only seeds CBC initialization
// vectors when no caller-supplied IV exists.
package lehmer

import "time"

const (
	// Modulus is 2^31 - 1.
	Modulus = 2147483647
	// Multiplier is 7^5.
	Multiplier = 16807
)

// Next returns the successor of x.
func Next(x uint32) uint32 {
	return uint32(uint64(x) * Multiplier % Modulus)
}

// Source is an io.Reader yielding the low byte of each successive state.
type Source struct {
	x uint32
}

// NewSource returns a Source seeded with seed. Zero is a fixed point of the
// generator and is replaced by one.
func NewSource(seed uint32) *Source {
	seed %= Modulus
	if seed == 0 {
		seed = 1
	}
	return &Source{x: seed}
}

// NewTimeSource seeds a Source from the wall clock in milliseconds.
func NewTimeSource() *Source {
	return NewSource(uint32(time.Now().UnixMilli() & 0x7fffffff))
}

// Read fills p and never fails.
func (s *Source) Read(p []byte) (int, error) {
	for i := range p {
		s.x = Next(s.x)
		p[i] = byte(s.x)
	}
	return len(p), nil
}

// IV16 returns 16 bytes from s.
func (s *Source) IV16() []byte {
	iv := make([]byte, 16)
	s.Read(iv)
	return iv
}
