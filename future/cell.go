// File: future/cell.go
// Author: momentics <momentics@gmail.com>

package future

import (
	"sync"

	"github.com/eapache/queue"
)

type state uint8

const (
	pending state = iota
	fulfilled
	failed
	cancelled
)

func (s state) String() string {
	switch s {
	case pending:
		return "pending"
	case fulfilled:
		return "fulfilled"
	case failed:
		return "failed"
	case cancelled:
		return "cancelled"
	}
	return "unknown"
}

// cell is the shared state. done is closed exactly once, by the call that
// moves state out of pending.
type cell[T any] struct {
	mu        sync.Mutex
	state     state
	value     T
	err       error
	done      chan struct{}
	callbacks *queue.Queue
	// draining is set while the resolving goroutine runs the queue; late
	// registrations join the queue instead of jumping ahead of it.
	draining bool
}

func newCell[T any]() *cell[T] {
	return &cell[T]{
		done:      make(chan struct{}),
		callbacks: queue.New(),
	}
}

// resolve moves a pending cell to s and runs queued callbacks in the order
// they were registered. It reports false if the cell was already resolved.
func (c *cell[T]) resolve(s state, v T, err error) bool {
	c.mu.Lock()
	if c.state != pending {
		c.mu.Unlock()
		return false
	}
	c.state, c.value, c.err = s, v, err
	close(c.done)
	c.draining = true
	c.mu.Unlock()

	for {
		c.mu.Lock()
		if c.callbacks.Length() == 0 {
			c.draining = false
			c.mu.Unlock()
			return true
		}
		fn := c.callbacks.Remove().(func())
		c.mu.Unlock()
		fn()
	}
}

func (c *cell[T]) snapshot() state {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// onComplete queues fn, or runs it at once when already resolved and no
// earlier callback is still queued.
func (c *cell[T]) onComplete(fn func()) {
	c.mu.Lock()
	if c.state == pending || c.draining {
		c.callbacks.Add(fn)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	fn()
}
