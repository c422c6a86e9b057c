// File: codecs/frame.go
// Author: momentics <momentics@gmail.com>
//
// Varint length-prefixed framing shared by the variable-size codecs.

package codecs

import (
	"errors"
	"fmt"
	"io"

	"github.com/momentics/hioload-chan/codec"
	"github.com/multiformats/go-varint"
)

// MaxFrameSize bounds the body a framed decoder accepts.
const MaxFrameSize = 64 << 20

var (
	ErrFrameTooLarge = errors.New("codecs: frame exceeds maximum size")
	ErrValueTaken    = errors.New("codecs: decoded value already taken")
)

// framed turns a whole-buffer marshal/unmarshal pair into a streaming codec.
type framed[T any] struct {
	marshal   func(T) ([]byte, error)
	unmarshal func([]byte) (T, error)
}

func (f framed[T]) Encoder(v T) (codec.Encoder, error) {
	body, err := f.marshal(v)
	if err != nil {
		return nil, err
	}
	if len(body) > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(body))
	}
	head := varint.ToUvarint(uint64(len(body)))
	buf := make([]byte, 0, len(head)+len(body))
	buf = append(append(buf, head...), body...)
	return &bufferEncoder{buf: buf}, nil
}

func (f framed[T]) Decoder() codec.Decoder[T] {
	return &frameDecoder[T]{unmarshal: f.unmarshal}
}

// bufferEncoder emits a prebuilt wire form.
type bufferEncoder struct {
	buf []byte
	off int
}

func (e *bufferEncoder) Encode(w io.Writer) (int, error) {
	n, err := w.Write(e.buf[e.off:])
	e.off += n
	return n, err
}

func (e *bufferEncoder) Remaining() int { return len(e.buf) - e.off }

type frameDecoder[T any] struct {
	unmarshal func([]byte) (T, error)
	head      []byte
	body      []byte
	size      int
	sized     bool
	taken     bool
}

func (d *frameDecoder[T]) Remaining() int {
	if !d.sized {
		return 1
	}
	return d.size - len(d.body)
}

func (d *frameDecoder[T]) Decode(p []byte) (int, error) {
	n := 0
	for !d.sized && n < len(p) {
		b := p[n]
		n++
		d.head = append(d.head, b)
		if b >= 0x80 {
			if len(d.head) >= varint.MaxLenUvarint63 {
				return n, varint.ErrOverflow
			}
			continue
		}
		size, _, err := varint.FromUvarint(d.head)
		if err != nil {
			return n, err
		}
		if size > MaxFrameSize {
			return n, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
		}
		d.size = int(size)
		d.sized = true
		d.body = make([]byte, 0, d.size)
	}
	if !d.sized {
		return n, nil
	}
	take := min(len(p)-n, d.size-len(d.body))
	d.body = append(d.body, p[n:n+take]...)
	return n + take, nil
}

func (d *frameDecoder[T]) Value() (T, error) {
	var zero T
	if d.Remaining() > 0 {
		return zero, io.ErrUnexpectedEOF
	}
	if d.taken {
		return zero, ErrValueTaken
	}
	d.taken = true
	return d.unmarshal(d.body)
}
