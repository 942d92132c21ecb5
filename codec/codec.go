package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// ErrMalformed is returned by Decoder methods when a blob does not match
// the canonical encoding a caller expects (truncated length prefix, short
// read). Trailing garbage is not detected by the Decoder methods; callers
// check Done and return ErrMalformed themselves.
var ErrMalformed = fmt.Errorf("codec: malformed encoding")

// Encoder builds a canonical, length-prefixed, little-endian byte string.
// Every variable-length field is a uvarint length followed by its bytes,
// so that two encoders fed the same logical values in the same order
// always produce identical output.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the encoded byte string built so far.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// PutByte appends a single tag byte.
func (e *Encoder) PutByte(b byte) {
	e.buf.WriteByte(b)
}

// PutUvarint appends v as a little-endian base-128 varint.
func (e *Encoder) PutUvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	e.buf.Write(tmp[:n])
}

// PutBlob appends len(b) as a uvarint followed by b itself.
func (e *Encoder) PutBlob(b []byte) {
	e.PutUvarint(uint64(len(b)))
	e.buf.Write(b)
}

// PutString appends s as a length-prefixed blob.
func (e *Encoder) PutString(s string) {
	e.PutBlob([]byte(s))
}

// PutHash appends the 32 raw bytes of h, unprefixed (fixed width).
func (e *Encoder) PutHash(h Hash) {
	e.buf.Write(h[:])
}

// Decoder reads back values written by Encoder, in the same order.
type Decoder struct {
	r *bytes.Reader
}

// NewDecoder wraps b for sequential decoding.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{r: bytes.NewReader(b)}
}

// Byte reads a single tag byte.
func (d *Decoder) Byte() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, ErrMalformed
	}
	return b, nil
}

// Uvarint reads a little-endian base-128 varint.
func (d *Decoder) Uvarint() (uint64, error) {
	v, err := binary.ReadUvarint(d.r)
	if err != nil {
		return 0, ErrMalformed
	}
	return v, nil
}

// Blob reads a length-prefixed byte string.
func (d *Decoder) Blob() ([]byte, error) {
	n, err := d.Uvarint()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, ErrMalformed
	}
	return buf, nil
}

// String reads a length-prefixed string.
func (d *Decoder) String() (string, error) {
	b, err := d.Blob()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Hash reads 32 raw bytes into a Hash.
func (d *Decoder) Hash() (Hash, error) {
	var h Hash
	if _, err := io.ReadFull(d.r, h[:]); err != nil {
		return Hash{}, ErrMalformed
	}
	return h, nil
}

// Done reports whether every byte of the input has been consumed. Callers
// use it to reject trailing garbage after a well-formed decode.
func (d *Decoder) Done() bool {
	return d.r.Len() == 0
}
