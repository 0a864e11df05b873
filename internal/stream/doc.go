// Package stream defines the push-in/pull-out transform contract shared by
// the hashing, cipher, envelope and signature streams, along with adapters
// for driving a transform from an io.Reader or into an io.Writer.
//
// A Transform consumes input with Feed and completes with Finish. Both
// append whatever output they produce to dst and return the extended slice,
// in the style of crypto/cipher.AEAD.Seal. Finish is the only point where a
// transform validates framing and authentication, so a caller that stops
// early must still call Finish to learn whether the input was well formed.
//
// Errors returned by transforms wrap exactly one of ErrMisuse, ErrFormat,
// ErrAuthentication or ErrKey.
package stream
