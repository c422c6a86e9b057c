// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior around real descriptors.

package fake

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-chan/api"
)

// Conn wraps a real api.NetConn and lets tests cap write sizes, inject
// errors and inspect traffic. The wrapped descriptor is still what gets
// polled, so readiness stays genuine.
type Conn struct {
	inner api.NetConn

	mu         sync.Mutex
	maxWrite   int
	maxRead    int
	writeError error
	readError  error
	closeError error
	writeCalls []int
	readCalls  []int

	closed atomic.Bool
}

var _ api.NetConn = (*Conn)(nil)

// NewConn wraps inner.
func NewConn(inner api.NetConn) *Conn {
	return &Conn{inner: inner}
}

// SetMaxWrite caps the bytes offered to each inner Write; 0 lifts the cap.
func (c *Conn) SetMaxWrite(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxWrite = n
}

// SetMaxRead caps the bytes requested from each inner Read; 0 lifts the cap.
func (c *Conn) SetMaxRead(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxRead = n
}

// SetWriteError configures the conn to fail every Write with err.
func (c *Conn) SetWriteError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeError = err
}

// SetReadError configures the conn to fail every Read with err.
func (c *Conn) SetReadError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readError = err
}

// SetCloseError makes Close return err after closing the inner conn.
func (c *Conn) SetCloseError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeError = err
}

// Read implements api.NetConn.Read.
func (c *Conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	err, limit := c.readError, c.maxRead
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}
	if limit > 0 && len(p) > limit {
		p = p[:limit]
	}
	n, err := c.inner.Read(p)
	if err == nil {
		c.mu.Lock()
		c.readCalls = append(c.readCalls, n)
		c.mu.Unlock()
	}
	return n, err
}

// Write implements api.NetConn.Write.
func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	err, limit := c.writeError, c.maxWrite
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}
	if limit > 0 && len(p) > limit {
		p = p[:limit]
	}
	n, err := c.inner.Write(p)
	if err == nil {
		c.mu.Lock()
		c.writeCalls = append(c.writeCalls, n)
		c.mu.Unlock()
	}
	return n, err
}

// Close implements api.NetConn.Close.
func (c *Conn) Close() error {
	c.closed.Store(true)
	err := c.inner.Close()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeError != nil {
		return c.closeError
	}
	return err
}

// RawFD implements api.NetConn.RawFD.
func (c *Conn) RawFD() uintptr {
	return c.inner.RawFD()
}

// CloseCalled reports whether Close ran.
func (c *Conn) CloseCalled() bool {
	return c.closed.Load()
}

// WriteCalls returns the accepted size of every successful Write.
func (c *Conn) WriteCalls() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.writeCalls...)
}

// ReadCalls returns the size of every successful Read.
func (c *Conn) ReadCalls() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.readCalls...)
}
