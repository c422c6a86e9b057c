//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import (
	"time"

	"github.com/momentics/hioload-chan/api"
)

// Select is not supported on this platform.
func Select(r, w, x []api.Selectable, timeout time.Duration) (Ready, error) {
	return Ready{}, api.ErrNotSupported
}

// Wait is not supported on this platform.
func Wait(fd int, interest Interest, wake int, timeout time.Duration) (Interest, error) {
	return 0, api.ErrNotSupported
}

// Poller is not supported on this platform.
type Poller struct{}

// NewPoller returns an error for unsupported platforms.
func NewPoller(maxEvents int) (*Poller, error) {
	return nil, api.ErrNotSupported
}

func (p *Poller) Add(ch api.Selectable, interest Interest) error { return api.ErrNotSupported }
func (p *Poller) Remove(ch api.Selectable) error                 { return api.ErrNotSupported }
func (p *Poller) Len() int                                       { return 0 }
func (p *Poller) Wait(timeout time.Duration) (Ready, error)      { return Ready{}, api.ErrNotSupported }
func (p *Poller) Close() error                                   { return api.ErrNotSupported }
