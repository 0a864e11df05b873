package stream

import (
	"errors"
	"fmt"
)

var (
	// ErrMisuse is returned when a stream is driven out of order, such as
	// feeding input after Finish or finishing twice.
	ErrMisuse = errors.New("stream misuse")

	// ErrFormat is returned when input is malformed: bad magic, truncated
	// headers, misaligned blocks or invalid padding.
	ErrFormat = errors.New("malformed input")

	// ErrAuthentication is returned when an authentication tag does not
	// verify.
	ErrAuthentication = errors.New("authentication failed")

	// ErrKey is returned when key material cannot be used, such as an
	// unwrap under the wrong private key.
	ErrKey = errors.New("key error")

	// ErrFinished is returned by Feed or Finish on a stream that has
	// already been finished.
	ErrFinished = fmt.Errorf("%w: stream already finished", ErrMisuse)
)

// Errorf returns an error wrapping kind with a formatted detail message.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
