// File: codec/codec.go
// Author: momentics <momentics@gmail.com>

package codec

import (
	"bytes"
	"fmt"
	"io"
)

// Encoder is a single-use cursor over one value's wire form.
type Encoder interface {
	// Encode writes the next chunk of the value to w and returns its size.
	Encode(w io.Writer) (int, error)

	// Remaining reports the bytes not yet produced. It only decreases.
	Remaining() int
}

// Decoder is a single-use cursor accumulating one value's wire form.
type Decoder[T any] interface {
	// Decode consumes a prefix of p, never more than Remaining bytes, and
	// returns how many bytes it took.
	Decode(p []byte) (int, error)

	// Remaining reports the bytes still needed. Framed decoders may report a
	// lower bound until their header is complete.
	Remaining() int

	// Value returns the decoded value once Remaining reaches zero.
	Value() (T, error)
}

// Codec is a stateless factory of encoders and decoders for one type.
type Codec[T any] interface {
	Encoder(v T) (Encoder, error)
	Decoder() Decoder[T]
}

// HasRemaining reports whether the cursor still has bytes outstanding.
func HasRemaining(c interface{ Remaining() int }) bool {
	return c.Remaining() > 0
}

// EncodeTo drains a fresh encoder for v into buf.
func EncodeTo[T any](buf *bytes.Buffer, c Codec[T], v T) error {
	enc, err := c.Encoder(v)
	if err != nil {
		return err
	}
	for enc.Remaining() > 0 {
		n, err := enc.Encode(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("codec: encoder stalled with %d bytes remaining: %w", enc.Remaining(), io.ErrNoProgress)
		}
	}
	return nil
}

// Marshal returns the complete wire form of v.
func Marshal[T any](c Codec[T], v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, c, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Feed hands p to d in as many Decode calls as it takes.
func Feed[T any](d Decoder[T], p []byte) error {
	for len(p) > 0 {
		if d.Remaining() == 0 {
			return fmt.Errorf("codec: %d trailing bytes after complete value", len(p))
		}
		n, err := d.Decode(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("codec: decoder stalled with %d bytes pending: %w", len(p), io.ErrNoProgress)
		}
		p = p[n:]
	}
	return nil
}

// Unmarshal decodes exactly one value from data.
func Unmarshal[T any](c Codec[T], data []byte) (T, error) {
	d := c.Decoder()
	for len(data) > 0 && d.Remaining() > 0 {
		n := min(len(data), d.Remaining())
		if err := Feed(d, data[:n]); err != nil {
			var zero T
			return zero, err
		}
		data = data[n:]
	}
	if d.Remaining() > 0 {
		var zero T
		return zero, fmt.Errorf("codec: %d bytes short: %w", d.Remaining(), io.ErrUnexpectedEOF)
	}
	if len(data) > 0 {
		var zero T
		return zero, fmt.Errorf("codec: %d trailing bytes after complete value", len(data))
	}
	return d.Value()
}
