//go:build !linux

// File: transport/transport_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package transport

import (
	"net"

	"github.com/momentics/hioload-chan/api"
)

// FDConn is not supported on this platform.
type FDConn struct{}

func NewFDConn(fd int) (*FDConn, error)            { return nil, api.ErrNotSupported }
func Socketpair() (*FDConn, *FDConn, error)        { return nil, nil, api.ErrNotSupported }
func FromNetConn(c net.Conn) (*FDConn, error)      { return nil, api.ErrNotSupported }
func (c *FDConn) Read(p []byte) (int, error)       { return 0, api.ErrNotSupported }
func (c *FDConn) Write(p []byte) (int, error)      { return 0, api.ErrNotSupported }
func (c *FDConn) Shutdown() error                  { return api.ErrNotSupported }
func (c *FDConn) SetBuffers(send, recv int) error  { return api.ErrNotSupported }
func (c *FDConn) Close() error                     { return nil }
func (c *FDConn) RawFD() uintptr                   { return ^uintptr(0) }

// Waker is not supported on this platform.
type Waker struct{}

func NewWaker() (*Waker, error) { return nil, api.ErrNotSupported }
func (w *Waker) FD() int        { return -1 }
func (w *Waker) Wake() error    { return api.ErrNotSupported }
func (w *Waker) Close() error   { return nil }
