// File: codecs/compress.go
// Author: momentics <momentics@gmail.com>
//
// Whole-message compression around an inner codec.

package codecs

import (
	"fmt"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/momentics/hioload-chan/codec"
)

// Snappy compresses the inner codec's wire form with snappy block format.
func Snappy[T any](inner codec.Codec[T]) codec.Codec[T] {
	return compressed(inner,
		func(b []byte) ([]byte, error) { return snappy.Encode(nil, b), nil },
		func(b []byte) ([]byte, error) {
			n, err := snappy.DecodedLen(b)
			if err != nil {
				return nil, err
			}
			if n > MaxFrameSize {
				return nil, fmt.Errorf("%w: snappy body claims %d bytes", ErrFrameTooLarge, n)
			}
			return snappy.Decode(nil, b)
		},
	)
}

// Encoder and decoder are safe for concurrent EncodeAll/DecodeAll.
var zstdCoders = sync.OnceValues(func() (*zstd.Encoder, *zstd.Decoder) {
	enc, _ := zstd.NewWriter(nil)
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxFrameSize))
	return enc, dec
})

// Zstd compresses the inner codec's wire form with zstandard.
func Zstd[T any](inner codec.Codec[T]) codec.Codec[T] {
	return compressed(inner,
		func(b []byte) ([]byte, error) {
			enc, _ := zstdCoders()
			return enc.EncodeAll(b, nil), nil
		},
		func(b []byte) ([]byte, error) {
			_, dec := zstdCoders()
			return dec.DecodeAll(b, nil)
		},
	)
}

func compressed[T any](inner codec.Codec[T], pack, unpack func([]byte) ([]byte, error)) codec.Codec[T] {
	return framed[T]{
		marshal: func(v T) ([]byte, error) {
			raw, err := codec.Marshal(inner, v)
			if err != nil {
				return nil, err
			}
			return pack(raw)
		},
		unmarshal: func(b []byte) (T, error) {
			raw, err := unpack(b)
			if err != nil {
				var zero T
				return zero, err
			}
			return codec.Unmarshal(inner, raw)
		},
	}
}
