// File: codec/erase.go
// Author: momentics <momentics@gmail.com>
//
// Adapters between typed codecs and the type-erased form channels carry.

package codec

import "fmt"

// TypeError reports a value whose dynamic type does not match the codec.
type TypeError struct {
	Want Tag
	Got  Tag
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("codec: value of type %s given to codec for %s", e.Got, e.Want)
}

type erased[T any] struct {
	c Codec[T]
}

// Erase adapts a typed codec to Codec[any]. A nil codec stays nil so callers
// can keep registry resolution.
func Erase[T any](c Codec[T]) Codec[any] {
	if c == nil {
		return nil
	}
	if e, ok := any(c).(Codec[any]); ok {
		return e
	}
	return erased[T]{c: c}
}

func (e erased[T]) Encoder(v any) (Encoder, error) {
	tv, ok := v.(T)
	if !ok {
		return nil, &TypeError{Want: TagFor[T](), Got: TagOf(v)}
	}
	return e.c.Encoder(tv)
}

func (e erased[T]) Decoder() Decoder[any] {
	return erasedDecoder[T]{d: e.c.Decoder()}
}

type erasedDecoder[T any] struct {
	d Decoder[T]
}

func (d erasedDecoder[T]) Decode(p []byte) (int, error) { return d.d.Decode(p) }
func (d erasedDecoder[T]) Remaining() int              { return d.d.Remaining() }

func (d erasedDecoder[T]) Value() (any, error) {
	v, err := d.d.Value()
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Typed narrows an erased codec back to T. Encoders accept only T; decoded
// values of another type fail with a *TypeError.
func Typed[T any](c Codec[any]) Codec[T] {
	if c == nil {
		return nil
	}
	if t, ok := c.(Codec[T]); ok {
		return t
	}
	return typed[T]{c: c}
}

type typed[T any] struct {
	c Codec[any]
}

func (t typed[T]) Encoder(v T) (Encoder, error) { return t.c.Encoder(v) }

func (t typed[T]) Decoder() Decoder[T] {
	return typedDecoder[T]{d: t.c.Decoder()}
}

type typedDecoder[T any] struct {
	d Decoder[any]
}

func (d typedDecoder[T]) Decode(p []byte) (int, error) { return d.d.Decode(p) }
func (d typedDecoder[T]) Remaining() int              { return d.d.Remaining() }

func (d typedDecoder[T]) Value() (T, error) {
	var zero T
	v, err := d.d.Value()
	if err != nil {
		return zero, err
	}
	tv, ok := v.(T)
	if !ok {
		return zero, &TypeError{Want: TagFor[T](), Got: TagOf(v)}
	}
	return tv, nil
}
