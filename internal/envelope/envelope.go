package envelope

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tink-crypto/tink-go/v2/subtle/random"

	"cryptokit/internal/gcm"
	"cryptokit/internal/stream"
)

const (
	// Magic opens every envelope stream.
	Magic = "RSA_AES_GCM_V1"

	// KeySize is the session key size in bytes.
	KeySize = gcm.KeySize
	// NonceSize is the session nonce size in bytes.
	NonceSize = gcm.NonceSize
	// TagSize is the trailing authentication tag size in bytes.
	TagSize = gcm.TagSize

	lengthSize = 2
	prefixSize = len(Magic) + lengthSize
)

var (
	// ErrBadMagic is returned when the stream does not start with Magic.
	ErrBadMagic = fmt.Errorf("%w: envelope: bad header: magic mismatch", stream.ErrFormat)

	// ErrTruncatedHeader is returned when the stream ends inside the header.
	ErrTruncatedHeader = fmt.Errorf("%w: envelope: truncated header", stream.ErrFormat)

	// ErrSessionKeySize is returned when the unwrapped blob is not key || nonce.
	ErrSessionKeySize = fmt.Errorf("%w: envelope: bad header: unwrapped key/nonce length mismatch", stream.ErrFormat)

	// ErrTruncated is returned when fewer than TagSize bytes follow the header.
	ErrTruncated = fmt.Errorf("%w: envelope: missing or short authentication tag", stream.ErrFormat)

	// ErrWrappedTooLarge is returned when a wrapped key does not fit the
	// 16-bit length field.
	ErrWrappedTooLarge = fmt.Errorf("%w: envelope: wrapped key too large", stream.ErrKey)
)

// Encrypter produces an envelope stream. It implements stream.Transform.
type Encrypter struct {
	wrapper KeyWrapper
	sealer  *gcm.Sealer
	state   stream.State
}

// NewEncrypter returns an Encrypter wrapping its session key with w.
func NewEncrypter(w KeyWrapper) *Encrypter {
	return &Encrypter{wrapper: w}
}

func (e *Encrypter) appendHeader(dst []byte) ([]byte, error) {
	if e.sealer != nil {
		return dst, nil
	}
	material := random.GetRandomBytes(KeySize + NonceSize)
	defer clear(material)

	wrapped, err := e.wrapper.WrapKey(material)
	if err != nil {
		return dst, err
	}
	if len(wrapped) > math.MaxUint16 {
		return dst, ErrWrappedTooLarge
	}
	sealer, err := gcm.NewSealer(material[:KeySize], material[KeySize:])
	if err != nil {
		return dst, err
	}
	e.sealer = sealer

	dst = append(dst, Magic...)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(wrapped)))
	return append(dst, wrapped...), nil
}

// Feed implements stream.Transform.
func (e *Encrypter) Feed(dst, src []byte) ([]byte, error) {
	if err := e.state.Check(); err != nil {
		return dst, err
	}
	out, err := e.appendHeader(dst)
	if err != nil {
		return dst, e.state.Fail(err)
	}
	out, err = e.sealer.Update(out, src)
	if err != nil {
		return dst, e.state.Fail(err)
	}
	return out, nil
}

// Finish implements stream.Transform. It appends the authentication tag.
func (e *Encrypter) Finish(dst []byte) ([]byte, error) {
	if err := e.state.Close(); err != nil {
		return dst, err
	}
	out, err := e.appendHeader(dst)
	if err != nil {
		return dst, e.state.Fail(err)
	}
	out, err = e.sealer.Finish(out)
	if err != nil {
		return dst, e.state.Fail(err)
	}
	return out, nil
}

// Decrypter consumes an envelope stream. It implements stream.Transform.
//
// The last TagSize bytes seen are always held back unresolved, since only
// Finish knows they are the tag. Plaintext released by Feed is unverified
// until Finish succeeds.
type Decrypter struct {
	unwrapper KeyUnwrapper
	hdr       []byte
	opener    *gcm.Opener
	tail      [TagSize]byte
	ntail     int
	state     stream.State
}

// NewDecrypter returns a Decrypter unwrapping session keys with u.
func NewDecrypter(u KeyUnwrapper) *Decrypter {
	return &Decrypter{unwrapper: u}
}

// parseHeader buffers src into the header. It returns the bytes following
// the header once it is complete, or nil while more input is needed.
func (d *Decrypter) parseHeader(src []byte) ([]byte, error) {
	d.hdr = append(d.hdr, src...)

	n := min(len(d.hdr), len(Magic))
	if !bytes.Equal(d.hdr[:n], []byte(Magic[:n])) {
		return nil, ErrBadMagic
	}
	if len(d.hdr) < prefixSize {
		return nil, nil
	}
	need := prefixSize + int(binary.BigEndian.Uint16(d.hdr[len(Magic):]))
	if len(d.hdr) < need {
		return nil, nil
	}

	material, err := d.unwrapper.UnwrapKey(d.hdr[prefixSize:need])
	if err != nil {
		return nil, err
	}
	defer clear(material)
	if len(material) != KeySize+NonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSessionKeySize, len(material), KeySize+NonceSize)
	}
	opener, err := gcm.NewOpener(material[:KeySize], material[KeySize:])
	if err != nil {
		return nil, err
	}
	d.opener = opener

	rest := d.hdr[need:]
	d.hdr = nil
	return rest, nil
}

// feedBody releases everything but the newest TagSize bytes to the opener.
func (d *Decrypter) feedBody(dst, src []byte) ([]byte, error) {
	if d.ntail+len(src) <= TagSize {
		d.ntail += copy(d.tail[d.ntail:], src)
		return dst, nil
	}
	release := d.ntail + len(src) - TagSize

	fromTail := min(release, d.ntail)
	dst, err := d.opener.Update(dst, d.tail[:fromTail])
	if err != nil {
		return dst, err
	}
	d.ntail = copy(d.tail[:], d.tail[fromTail:d.ntail])

	fromSrc := release - fromTail
	dst, err = d.opener.Update(dst, src[:fromSrc])
	if err != nil {
		return dst, err
	}
	d.ntail += copy(d.tail[d.ntail:], src[fromSrc:])
	return dst, nil
}

// Feed implements stream.Transform.
func (d *Decrypter) Feed(dst, src []byte) ([]byte, error) {
	if err := d.state.Check(); err != nil {
		return dst, err
	}
	if d.opener == nil {
		rest, err := d.parseHeader(src)
		if err != nil {
			d.hdr = nil
			return dst, d.state.Fail(err)
		}
		if d.opener == nil {
			return dst, nil
		}
		src = rest
	}
	out, err := d.feedBody(dst, src)
	if err != nil {
		return dst, d.state.Fail(err)
	}
	return out, nil
}

// Finish implements stream.Transform. It fails with an error wrapping
// stream.ErrAuthentication if the tag does not verify, in which case all
// plaintext released so far must be discarded.
func (d *Decrypter) Finish(dst []byte) ([]byte, error) {
	if err := d.state.Close(); err != nil {
		return dst, err
	}
	if d.opener == nil {
		return dst, d.state.Fail(ErrTruncatedHeader)
	}
	if d.ntail != TagSize {
		return dst, d.state.Fail(ErrTruncated)
	}
	if err := d.opener.Finish(d.tail[:]); err != nil {
		return dst, d.state.Fail(err)
	}
	return dst, nil
}
