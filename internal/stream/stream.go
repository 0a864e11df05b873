package stream

import (
	"bufio"
	"io"
)

// DefaultBufferSize is the read buffer used by Copy.
const DefaultBufferSize = 1024 * 1024

// Transform is an incremental byte transformation.
type Transform interface {
	// Feed consumes src, appends any output it can release to dst and
	// returns the extended slice.
	Feed(dst, src []byte) ([]byte, error)

	// Finish ends the input, appends any trailing output to dst and returns
	// the extended slice. On error the returned slice must be discarded.
	Finish(dst []byte) ([]byte, error)
}

// Writer is an io.WriteCloser that pushes everything written through a
// Transform and writes the output to an underlying writer. Close finishes
// the transform but does not close the underlying writer.
type Writer struct {
	w   io.Writer
	t   Transform
	buf []byte
}

// NewWriter returns a Writer pushing through t into w.
func NewWriter(w io.Writer, t Transform) *Writer {
	return &Writer{w: w, t: t}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	out, err := w.t.Feed(w.buf[:0], p)
	if err != nil {
		return 0, err
	}
	w.buf = out
	if len(out) > 0 {
		if _, err := w.w.Write(out); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Close finishes the transform and writes its trailing output.
func (w *Writer) Close() error {
	out, err := w.t.Finish(w.buf[:0])
	if err != nil {
		return err
	}
	w.buf = nil
	if len(out) > 0 {
		if _, err := w.w.Write(out); err != nil {
			return err
		}
	}
	return nil
}

// Copy pumps src through t into dst until EOF, then finishes t. It returns
// the number of input bytes consumed.
func Copy(dst io.Writer, src io.Reader, t Transform) (int64, error) {
	return CopyBuffer(dst, src, t, DefaultBufferSize)
}

// CopyBuffer is Copy with an explicit read buffer size.
func CopyBuffer(dst io.Writer, src io.Reader, t Transform, size int) (int64, error) {
	if size <= 0 {
		size = DefaultBufferSize
	}
	w := NewWriter(dst, t)
	n, err := io.CopyBuffer(w, readerOnly{src}, make([]byte, size))
	if err != nil {
		return n, err
	}
	return n, w.Close()
}

// NewBufferedWriter wraps w in a bufio.Writer of the given size.
func NewBufferedWriter(w io.Writer, size int) *bufio.Writer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return bufio.NewWriterSize(w, size)
}

// readerOnly hides any WriterTo implementation so CopyBuffer always uses
// the supplied buffer.
type readerOnly struct {
	io.Reader
}
