// File: channel/typed.go
// Author: momentics <momentics@gmail.com>
//
// Typed helpers over the type-erased channel capabilities.

package channel

import (
	"fmt"
	"time"

	"github.com/momentics/hioload-chan/api"
	"github.com/momentics/hioload-chan/codec"
)

// Send writes v through out. A nil codec is resolved from T's tag by the
// channel's registry.
func Send[T any](out api.Output, v T, c codec.Codec[T]) error {
	return out.Send(v, codec.Erase(c))
}

// SendTimeout writes v through out within timeout.
func SendTimeout[T any](out api.AsyncOutput, v T, c codec.Codec[T], timeout time.Duration) error {
	return out.SendTimeout(v, codec.Erase(c), timeout)
}

// Recv reads one T from in. ok is false when the stream ended before the
// value started.
func Recv[T any](in api.Input, c codec.Codec[T]) (T, bool, error) {
	v, ok, err := in.Recv(codec.TagFor[T](), codec.Erase(c))
	return typed[T](v, ok, err)
}

// RecvTimeout reads one T from in within timeout.
func RecvTimeout[T any](in api.AsyncInput, c codec.Codec[T], timeout time.Duration) (T, bool, error) {
	v, ok, err := in.RecvTimeout(codec.TagFor[T](), codec.Erase(c), timeout)
	return typed[T](v, ok, err)
}

func typed[T any](v any, ok bool, err error) (T, bool, error) {
	var zero T
	if err != nil || !ok {
		return zero, ok, err
	}
	if v == nil {
		return zero, true, nil
	}
	out, match := v.(T)
	if !match {
		return zero, false, fmt.Errorf("%w: %s",
			api.ErrCodecTypeMismatch, &codec.TypeError{Want: codec.TagFor[T](), Got: codec.TagOf(v)})
	}
	return out, true, nil
}
