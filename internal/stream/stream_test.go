package stream

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// holdLast echoes its input but always keeps the newest byte back until
// Finish, which rejects input ending in '!'.
type holdLast struct {
	last  []byte
	state State
}

func (h *holdLast) Feed(dst, src []byte) ([]byte, error) {
	if err := h.state.Check(); err != nil {
		return dst, err
	}
	if len(src) == 0 {
		return dst, nil
	}
	dst = append(dst, h.last...)
	dst = append(dst, src[:len(src)-1]...)
	h.last = []byte{src[len(src)-1]}
	return dst, nil
}

func (h *holdLast) Finish(dst []byte) ([]byte, error) {
	if err := h.state.Close(); err != nil {
		return dst, err
	}
	if bytes.Equal(h.last, []byte("!")) {
		return dst, h.state.Fail(Errorf(ErrFormat, "trailing %q", h.last))
	}
	return append(dst, h.last...), nil
}

func TestCopy(t *testing.T) {
	in := strings.Repeat("abcdefgh", 1000)
	var out bytes.Buffer
	n, err := CopyBuffer(&out, strings.NewReader(in), &holdLast{}, 3)
	require.NoError(t, err)
	require.EqualValues(t, len(in), n)
	require.Equal(t, in, out.String())
}

func TestWriterSurfacesFinishError(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out, &holdLast{})
	_, err := w.Write([]byte("oops!"))
	require.NoError(t, err)
	require.Equal(t, "oops", out.String())

	err = w.Close()
	require.ErrorIs(t, err, ErrFormat)
	require.False(t, errors.Is(err, ErrAuthentication))
	require.Contains(t, err.Error(), `trailing "!"`)

	_, err = w.Write([]byte("x"))
	require.ErrorIs(t, err, ErrFormat)
}

func TestState(t *testing.T) {
	var s State
	require.NoError(t, s.Check())
	require.NoError(t, s.Close())
	require.True(t, s.Done())
	require.ErrorIs(t, s.Check(), ErrFinished)
	require.ErrorIs(t, s.Close(), ErrMisuse)

	var f State
	first := errors.New("first")
	require.Equal(t, first, f.Fail(first))
	require.Equal(t, first, f.Fail(errors.New("second")))
	require.Equal(t, first, f.Close())
	require.False(t, f.Done())
}
