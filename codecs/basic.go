// File: codecs/basic.go
// Author: momentics <momentics@gmail.com>

package codecs

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"

	"github.com/momentics/hioload-chan/codec"
)

// Bytes frames a raw byte slice.
func Bytes() codec.Codec[[]byte] {
	return framed[[]byte]{
		marshal:   func(b []byte) ([]byte, error) { return b, nil },
		unmarshal: func(b []byte) ([]byte, error) { return b, nil },
	}
}

// String frames a UTF-8 string.
func String() codec.Codec[string] {
	return framed[string]{
		marshal:   func(s string) ([]byte, error) { return []byte(s), nil },
		unmarshal: func(b []byte) (string, error) { return string(b), nil },
	}
}

// JSON frames the encoding/json form of T.
func JSON[T any]() codec.Codec[T] {
	return framed[T]{
		marshal: func(v T) ([]byte, error) { return json.Marshal(v) },
		unmarshal: func(b []byte) (T, error) {
			var v T
			err := json.Unmarshal(b, &v)
			return v, err
		},
	}
}

// fixed is a prefix-free codec for numbers of a known width.
type fixed[T any] struct {
	size int
	put  func([]byte, T)
	get  func([]byte) T
}

func (f fixed[T]) Encoder(v T) (codec.Encoder, error) {
	buf := make([]byte, f.size)
	f.put(buf, v)
	return &bufferEncoder{buf: buf}, nil
}

func (f fixed[T]) Decoder() codec.Decoder[T] {
	return &fixedDecoder[T]{f: f, buf: make([]byte, 0, f.size)}
}

type fixedDecoder[T any] struct {
	f     fixed[T]
	buf   []byte
	taken bool
}

func (d *fixedDecoder[T]) Decode(p []byte) (int, error) {
	take := min(len(p), d.Remaining())
	d.buf = append(d.buf, p[:take]...)
	return take, nil
}

func (d *fixedDecoder[T]) Remaining() int { return d.f.size - len(d.buf) }

func (d *fixedDecoder[T]) Value() (T, error) {
	var zero T
	if d.Remaining() > 0 {
		return zero, io.ErrUnexpectedEOF
	}
	if d.taken {
		return zero, ErrValueTaken
	}
	d.taken = true
	return d.f.get(d.buf), nil
}

// Uint32 writes four big-endian bytes.
func Uint32() codec.Codec[uint32] {
	return fixed[uint32]{size: 4, put: binary.BigEndian.PutUint32, get: binary.BigEndian.Uint32}
}

// Uint64 writes eight big-endian bytes.
func Uint64() codec.Codec[uint64] {
	return fixed[uint64]{size: 8, put: binary.BigEndian.PutUint64, get: binary.BigEndian.Uint64}
}

// Int64 writes the two's complement form as eight big-endian bytes.
func Int64() codec.Codec[int64] {
	return fixed[int64]{
		size: 8,
		put:  func(b []byte, v int64) { binary.BigEndian.PutUint64(b, uint64(v)) },
		get:  func(b []byte) int64 { return int64(binary.BigEndian.Uint64(b)) },
	}
}

// Float64 writes the IEEE 754 bits as eight big-endian bytes.
func Float64() codec.Codec[float64] {
	return fixed[float64]{
		size: 8,
		put:  func(b []byte, v float64) { binary.BigEndian.PutUint64(b, math.Float64bits(v)) },
		get:  func(b []byte) float64 { return math.Float64frombits(binary.BigEndian.Uint64(b)) },
	}
}

// RegisterDefaults binds the built-in scalar codecs in r.
func RegisterDefaults(r *codec.MapRegistry) {
	codec.Register(r, Bytes())
	codec.Register(r, String())
	codec.Register(r, Uint32())
	codec.Register(r, Uint64())
	codec.Register(r, Int64())
	codec.Register(r, Float64())
}
