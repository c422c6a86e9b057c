//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor - Linux epoll implementation.

package reactor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/momentics/hioload-chan/api"
	"golang.org/x/sys/unix"
)

// Poller is a level-triggered epoll watch set for callers that wait on the
// same channels repeatedly. It is safe for concurrent use; Wait calls are
// serialized.
type Poller struct {
	epfd    int
	mu      sync.Mutex
	waitMu  sync.Mutex
	watched map[int]registration
	events  []unix.EpollEvent
}

type registration struct {
	ch       api.Selectable
	interest Interest
}

// NewPoller creates an epoll instance sized for maxEvents per Wait.
func NewPoller(maxEvents int) (*Poller, error) {
	if maxEvents <= 0 {
		maxEvents = 128
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &Poller{
		epfd:    epfd,
		watched: make(map[int]registration),
		events:  make([]unix.EpollEvent, maxEvents),
	}, nil
}

func epollEvents(interest Interest) uint32 {
	var ev uint32
	if interest&Readable != 0 {
		ev |= unix.EPOLLIN
	}
	if interest&Writable != 0 {
		ev |= unix.EPOLLOUT
	}
	if interest&Exceptional != 0 {
		ev |= unix.EPOLLPRI
	}
	return ev
}

// Add watches ch for interest, or updates the interest if ch is watched.
func (p *Poller) Add(ch api.Selectable, interest Interest) error {
	if isNil(ch) {
		return api.ErrInvalidArgument
	}
	fd, ok := ch.SelectFD()
	if !ok {
		return api.ErrTransportClosed
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	ev := unix.EpollEvent{Events: epollEvents(interest), Fd: int32(fd)}
	op := unix.EPOLL_CTL_ADD
	if _, exists := p.watched[fd]; exists {
		op = unix.EPOLL_CTL_MOD
	}
	if err := unix.EpollCtl(p.epfd, op, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl: %w", err)
	}
	p.watched[fd] = registration{ch: ch, interest: interest}
	return nil
}

// Remove stops watching ch. Removing a channel that was already closed is
// not an error: the kernel dropped its descriptor with the close.
func (p *Poller) Remove(ch api.Selectable) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for fd, reg := range p.watched {
		if reg.ch != ch {
			continue
		}
		delete(p.watched, fd)
		err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		if err != nil && !errors.Is(err, unix.EBADF) && !errors.Is(err, unix.ENOENT) {
			return fmt.Errorf("epoll ctl del: %w", err)
		}
		return nil
	}
	return nil
}

// Len returns the number of watched channels.
func (p *Poller) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.watched)
}

// Wait blocks up to timeout for readiness and reports it like Select.
// Channels found closed are dropped from the watch set.
func (p *Poller) Wait(timeout time.Duration) (Ready, error) {
	p.waitMu.Lock()
	defer p.waitMu.Unlock()

	dl := NewDeadline(timeout)
	var n int
	for {
		var err error
		n, err = unix.EpollWait(p.epfd, p.events, pollMillis(dl.Left()))
		if err == unix.EINTR {
			if dl.Expired() {
				return Ready{}, nil
			}
			continue
		}
		if err != nil {
			return Ready{}, fmt.Errorf("epoll wait: %w", err)
		}
		break
	}

	var ready Ready
	var stale []api.Selectable
	p.mu.Lock()
	for i := 0; i < n; i++ {
		ev := p.events[i]
		reg, ok := p.watched[int(ev.Fd)]
		if !ok {
			continue
		}
		if reg.ch.Closed() {
			stale = append(stale, reg.ch)
			continue
		}
		if reg.interest&Readable != 0 && ev.Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
			ready.Readable = append(ready.Readable, reg.ch)
		}
		if reg.interest&Writable != 0 && ev.Events&(unix.EPOLLOUT|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
			ready.Writable = append(ready.Writable, reg.ch)
		}
		if reg.interest&Exceptional != 0 && ev.Events&unix.EPOLLPRI != 0 {
			ready.Exceptional = append(ready.Exceptional, reg.ch)
		}
	}
	p.mu.Unlock()

	for _, ch := range stale {
		_ = p.Remove(ch)
	}
	return ready, nil
}

// Close releases the epoll descriptor.
func (p *Poller) Close() error {
	return unix.Close(p.epfd)
}
