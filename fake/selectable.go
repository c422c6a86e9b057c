// Package fake
// Author: momentics <momentics@gmail.com>

package fake

import (
	"sync/atomic"

	"github.com/momentics/hioload-chan/api"
)

// Selectable exposes an arbitrary descriptor to the selector with a
// closed flag tests flip by hand. Close does not touch the descriptor.
type Selectable struct {
	FD     int
	closed atomic.Bool
}

var _ api.Selectable = (*Selectable)(nil)

// NewSelectable wraps fd.
func NewSelectable(fd int) *Selectable {
	return &Selectable{FD: fd}
}

// Close implements api.Closeable.
func (s *Selectable) Close() error {
	s.closed.Store(true)
	return nil
}

// Closed implements api.Closeable.
func (s *Selectable) Closed() bool {
	return s.closed.Load()
}

// SelectFD implements api.Selectable.
func (s *Selectable) SelectFD() (int, bool) {
	if s.closed.Load() {
		return -1, false
	}
	return s.FD, true
}
