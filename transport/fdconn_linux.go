//go:build linux

// File: transport/fdconn_linux.go
// Author: momentics <momentics@gmail.com>
//
// Non-blocking descriptor transport. Reads and writes go straight to the
// kernel; readiness is the caller's business (see reactor.Wait).

package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"syscall"

	"github.com/momentics/hioload-chan/api"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

// FDConn is an api.NetConn over a non-blocking stream descriptor.
type FDConn struct {
	fd     int
	closed atomic.Bool
	// owner is closed together with fd when the descriptor was adopted.
	owner interface{ Close() error }
}

var _ api.NetConn = (*FDConn)(nil)
var _ api.Shutdowner = (*FDConn)(nil)

// NewFDConn takes ownership of fd and switches it to non-blocking mode.
func NewFDConn(fd int) (*FDConn, error) {
	if fd < 0 {
		return nil, api.ErrInvalidArgument
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, os.NewSyscallError("setnonblock", err)
	}
	return &FDConn{fd: fd}, nil
}

// Socketpair returns both ends of a connected AF_UNIX stream pair.
func Socketpair() (*FDConn, *FDConn, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, os.NewSyscallError("socketpair", err)
	}
	return &FDConn{fd: fds[0]}, &FDConn{fd: fds[1]}, nil
}

// FromNetConn duplicates the descriptor behind c. Closing the FDConn also
// closes c; c must not be used for I/O afterwards.
func FromNetConn(c net.Conn) (*FDConn, error) {
	sc, ok := c.(syscall.Conn)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no descriptor", api.ErrNotSupported, c)
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return nil, err
	}
	dup := -1
	var dupErr error
	if err := raw.Control(func(fd uintptr) {
		dup, dupErr = unix.FcntlInt(fd, unix.F_DUPFD_CLOEXEC, 0)
	}); err != nil {
		return nil, err
	}
	if dupErr != nil {
		return nil, os.NewSyscallError("fcntl", dupErr)
	}
	conn, err := NewFDConn(dup)
	if err != nil {
		_ = unix.Close(dup)
		return nil, err
	}
	conn.owner = c
	return conn, nil
}

// Read implements api.NetConn.
func (c *FDConn) Read(p []byte) (int, error) {
	if c.closed.Load() {
		return 0, api.ErrTransportClosed
	}
	for {
		n, err := unix.Read(c.fd, p)
		if err == nil {
			return n, nil
		}
		if err == unix.EINTR {
			continue
		}
		return 0, mapErrno("read", err)
	}
}

// Write implements api.NetConn.
func (c *FDConn) Write(p []byte) (int, error) {
	if c.closed.Load() {
		return 0, api.ErrTransportClosed
	}
	for {
		n, err := unix.Write(c.fd, p)
		if err == nil {
			return n, nil
		}
		if err == unix.EINTR {
			continue
		}
		return 0, mapErrno("write", err)
	}
}

func mapErrno(op string, err error) error {
	switch {
	case errors.Is(err, unix.EAGAIN):
		return api.ErrWouldBlock
	case errors.Is(err, unix.EPIPE), errors.Is(err, unix.ECONNRESET):
		return fmt.Errorf("%w: %s: %v", api.ErrEndOfStream, op, err)
	default:
		return os.NewSyscallError(op, err)
	}
}

// Shutdown half-closes both directions; the peer reads end of stream.
func (c *FDConn) Shutdown() error {
	if c.closed.Load() {
		return api.ErrTransportClosed
	}
	return os.NewSyscallError("shutdown", unix.Shutdown(c.fd, unix.SHUT_RDWR))
}

// SetBuffers sets the kernel send and receive buffer sizes. Zero keeps the
// current value.
func (c *FDConn) SetBuffers(send, recv int) error {
	var err error
	if send > 0 {
		err = multierr.Append(err, os.NewSyscallError("setsockopt", unix.SetsockoptInt(c.fd, unix.SOL_SOCKET, unix.SO_SNDBUF, send)))
	}
	if recv > 0 {
		err = multierr.Append(err, os.NewSyscallError("setsockopt", unix.SetsockoptInt(c.fd, unix.SOL_SOCKET, unix.SO_RCVBUF, recv)))
	}
	return err
}

// Close implements api.NetConn. Only the first call releases anything.
func (c *FDConn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := os.NewSyscallError("close", unix.Close(c.fd))
	if c.owner != nil {
		err = multierr.Append(err, c.owner.Close())
	}
	return err
}

// RawFD implements api.NetConn.
func (c *FDConn) RawFD() uintptr {
	return uintptr(c.fd)
}
