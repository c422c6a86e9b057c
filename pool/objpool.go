// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package pool

import "sync"

// ObjectPool is a generic object pool.
type ObjectPool[T any] interface {
	Get() T
	Put(T)
}

// SyncPool wraps sync.Pool for generic usage. An optional reset hook runs
// on Put and may veto reuse by returning false.
type SyncPool[T any] struct {
	pool  *sync.Pool
	reset func(T) bool
}

// NewSyncPool creates a new SyncPool with a creator function.
func NewSyncPool[T any](creator func() T, reset func(T) bool) *SyncPool[T] {
	return &SyncPool[T]{
		pool:  &sync.Pool{New: func() any { return creator() }},
		reset: reset,
	}
}

var _ ObjectPool[*[]byte] = (*SyncPool[*[]byte])(nil)

// Get returns a pooled object or a fresh one from the creator.
func (sp *SyncPool[T]) Get() T {
	return sp.pool.Get().(T)
}

// Put recycles obj unless the reset hook vetoes it.
func (sp *SyncPool[T]) Put(obj T) {
	if sp.reset != nil && !sp.reset(obj) {
		return
	}
	sp.pool.Put(obj)
}
