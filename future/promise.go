// File: future/promise.go
// Author: momentics <momentics@gmail.com>

package future

import (
	"fmt"
	"time"

	"github.com/momentics/hioload-chan/api"
)

// Promise is the write side of a future. Exactly one of SetResult,
// SetError or Cancel takes effect.
type Promise[T any] struct {
	c *cell[T]
}

// NewPromise returns a pending promise.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{c: newCell[T]()}
}

// Resolved returns a future already fulfilled with v.
func Resolved[T any](v T) Future[T] {
	p := NewPromise[T]()
	_ = p.SetResult(v)
	return p.Future()
}

// Rejected returns a future already failed with err. A nil err fails it
// with api.ErrInvalidArgument.
func Rejected[T any](err error) Future[T] {
	if err == nil {
		err = fmt.Errorf("%w: nil error", api.ErrInvalidArgument)
	}
	p := NewPromise[T]()
	_ = p.SetError(err)
	return p.Future()
}

// Future returns the read side bound to this promise.
func (p *Promise[T]) Future() Future[T] {
	return Future[T]{c: p.c}
}

// SetResult fulfils the promise with v.
func (p *Promise[T]) SetResult(v T) error {
	if !p.c.resolve(fulfilled, v, nil) {
		return p.resolvedErr()
	}
	return nil
}

// SetError fails the promise with err, which must not be nil.
func (p *Promise[T]) SetError(err error) error {
	if err == nil {
		return fmt.Errorf("%w: nil error", api.ErrInvalidArgument)
	}
	var zero T
	if !p.c.resolve(failed, zero, err) {
		return p.resolvedErr()
	}
	return nil
}

func (p *Promise[T]) resolvedErr() error {
	return fmt.Errorf("%w: already %s", api.ErrAlreadyResolved, p.c.snapshot())
}

// Cancel resolves the promise as cancelled if still pending.
func (p *Promise[T]) Cancel() bool { return p.Future().Cancel() }

// Get is Future().Get().
func (p *Promise[T]) Get() (T, error) { return p.Future().Get() }

// Wait is Future().Wait(timeout).
func (p *Promise[T]) Wait(timeout time.Duration) bool { return p.Future().Wait(timeout) }

// Done is Future().Done().
func (p *Promise[T]) Done() <-chan struct{} { return p.c.done }

// Ready is Future().Ready().
func (p *Promise[T]) Ready() bool { return p.Future().Ready() }

// Fulfilled is Future().Fulfilled().
func (p *Promise[T]) Fulfilled() bool { return p.Future().Fulfilled() }

// Failed is Future().Failed().
func (p *Promise[T]) Failed() bool { return p.Future().Failed() }

// Cancelled is Future().Cancelled().
func (p *Promise[T]) Cancelled() bool { return p.Future().Cancelled() }
