// File: codecs/proto.go
// Author: momentics <momentics@gmail.com>

package codecs

import (
	"github.com/momentics/hioload-chan/codec"
	"google.golang.org/protobuf/proto"
)

// Proto frames the protobuf binary form of T. newT returns an empty message
// to unmarshal into.
func Proto[T proto.Message](newT func() T) codec.Codec[T] {
	return framed[T]{
		marshal: func(m T) ([]byte, error) { return proto.Marshal(m) },
		unmarshal: func(b []byte) (T, error) {
			m := newT()
			err := proto.Unmarshal(b, m)
			return m, err
		},
	}
}
