// File: future/future.go
// Author: momentics <momentics@gmail.com>

package future

import (
	"context"
	"time"

	"github.com/momentics/hioload-chan/api"
)

// Future is the read side of a Promise. Copies share the same cell. The
// zero Future is not usable; obtain one from Promise.Future.
type Future[T any] struct {
	c *cell[T]
}

// Get blocks until the future resolves and returns its value. A failed
// future returns the stored error on every call and a cancelled one
// returns api.ErrCancelled.
func (f Future[T]) Get() (T, error) {
	<-f.c.done
	return f.result()
}

// GetContext is Get bounded by ctx.
func (f Future[T]) GetContext(ctx context.Context) (T, error) {
	if err := f.WaitContext(ctx); err != nil {
		var zero T
		return zero, err
	}
	return f.result()
}

func (f Future[T]) result() (T, error) {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	switch f.c.state {
	case failed:
		var zero T
		return zero, f.c.err
	case cancelled:
		var zero T
		return zero, api.ErrCancelled
	}
	return f.c.value, nil
}

// Wait blocks until resolution or timeout and reports whether the future
// resolved. A negative timeout waits without bound.
func (f Future[T]) Wait(timeout time.Duration) bool {
	if timeout < 0 {
		<-f.c.done
		return true
	}
	select {
	case <-f.c.done:
		return true
	default:
	}
	if timeout == 0 {
		return false
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-f.c.done:
		return true
	case <-t.C:
		return f.Ready()
	}
}

// WaitContext blocks until resolution or ctx is done.
func (f Future[T]) WaitContext(ctx context.Context) error {
	select {
	case <-f.c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed on resolution.
func (f Future[T]) Done() <-chan struct{} {
	return f.c.done
}

// Ready reports whether the future left the pending state.
func (f Future[T]) Ready() bool {
	return f.c.snapshot() != pending
}

// Fulfilled reports whether the future resolved with a value.
func (f Future[T]) Fulfilled() bool {
	return f.c.snapshot() == fulfilled
}

// Failed reports whether the future resolved with an error.
func (f Future[T]) Failed() bool {
	return f.c.snapshot() == failed
}

// Cancelled reports whether the future was cancelled.
func (f Future[T]) Cancelled() bool {
	return f.c.snapshot() == cancelled
}

// Cancel resolves a pending future as cancelled. It reports false when the
// future had already resolved.
func (f Future[T]) Cancel() bool {
	var zero T
	return f.c.resolve(cancelled, zero, nil)
}

// OnComplete registers fn to run once after resolution, in registration
// order. fn runs on the goroutine that resolves the future, including when
// it is registered while earlier callbacks are still running; once those
// have finished it runs immediately on the caller's goroutine.
func (f Future[T]) OnComplete(fn func(Future[T])) {
	if fn == nil {
		return
	}
	f.c.onComplete(func() { fn(f) })
}

// State returns "pending", "fulfilled", "failed" or "cancelled".
func (f Future[T]) State() string {
	return f.c.snapshot().String()
}
