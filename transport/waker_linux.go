//go:build linux

// File: transport/waker_linux.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"encoding/binary"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Waker is an eventfd that becomes readable on Wake and stays readable, so
// every later poll including it returns at once.
type Waker struct {
	fd     int
	closed atomic.Bool
}

// NewWaker creates a non-blocking eventfd.
func NewWaker() (*Waker, error) {
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("eventfd", err)
	}
	return &Waker{fd: fd}, nil
}

// FD returns the descriptor to poll for readability.
func (w *Waker) FD() int {
	return w.fd
}

// Wake makes FD readable. A saturated counter is already readable.
func (w *Waker) Wake() error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(w.fd, buf[:])
	if err == unix.EAGAIN {
		return nil
	}
	return os.NewSyscallError("eventfd write", err)
}

// Close releases the eventfd.
func (w *Waker) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	return os.NewSyscallError("close", unix.Close(w.fd))
}
