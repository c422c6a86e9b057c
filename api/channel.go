// File: api/channel.go
// Author: momentics <momentics@gmail.com>
//
// Channel capability model. Each capability is an independent interface; a
// transport implements only the ones it supports and composes the rest.

package api

import (
	"time"

	"github.com/momentics/hioload-chan/codec"
)

// NoTimeout makes a timed operation block without a deadline. Any negative
// duration has the same meaning.
const NoTimeout time.Duration = -1

// Closeable is an endpoint with explicit, idempotent close semantics.
type Closeable interface {
	// Close releases the endpoint. Repeated calls have no further effect.
	Close() error

	// Closed reports whether Close has been called.
	Closed() bool
}

// Selectable exposes a pollable descriptor for the multiplex selector.
type Selectable interface {
	Closeable

	// SelectFD returns the descriptor to poll, or ok == false once closed.
	SelectFD() (fd int, ok bool)
}

// Input receives values decoded by a codec.
type Input interface {
	Closeable

	// Recv decodes one value. A nil codec is resolved from the tag. ok is
	// false with a nil error when the stream ended cleanly before the first
	// byte of a message.
	Recv(tag codec.Tag, c codec.Codec[any]) (v any, ok bool, err error)
}

// AsyncInput is an Input with deadline-bounded receive.
type AsyncInput interface {
	Input
	Selectable

	RecvTimeout(tag codec.Tag, c codec.Codec[any], timeout time.Duration) (v any, ok bool, err error)
}

// Output sends values encoded by a codec.
type Output interface {
	Closeable

	// Send encodes payload and transmits it whole. A nil codec is resolved
	// from the payload's runtime type.
	Send(payload any, c codec.Codec[any]) error
}

// AsyncOutput is an Output with deadline-bounded send.
type AsyncOutput interface {
	Output
	Selectable

	SendTimeout(payload any, c codec.Codec[any], timeout time.Duration) error
}

// Channel is a duplex endpoint.
type Channel interface {
	Input
	Output
}

// AsyncChannel is a duplex, selectable endpoint with timed operations.
type AsyncChannel interface {
	AsyncInput
	AsyncOutput
}
