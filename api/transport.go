// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Defines the byte-stream transport primitive a socket channel drives.

package api

// NetConn abstracts a full-duplex, non-blocking byte stream backed by a
// pollable OS descriptor.
type NetConn interface {
	// Read reads at most len(p) bytes. n == 0 with a nil error denotes an
	// orderly peer shutdown; ErrWouldBlock means nothing is buffered yet.
	Read(p []byte) (n int, err error)

	// Write writes a prefix of p and reports how many bytes were accepted.
	// Short writes are not errors; ErrWouldBlock means the send buffer is full.
	Write(p []byte) (n int, err error)

	// Close releases the descriptor.
	Close() error

	// RawFD returns the underlying OS-level file descriptor
	RawFD() uintptr
}

// Shutdowner is implemented by transports able to half-close their stream.
type Shutdowner interface {
	Shutdown() error
}
