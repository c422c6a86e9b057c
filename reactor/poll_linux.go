//go:build linux

// File: reactor/poll_linux.go
// Author: momentics <momentics@gmail.com>
//
// poll(2)-based Select and Wait.

package reactor

import (
	"fmt"
	"os"
	"time"

	"github.com/momentics/hioload-chan/api"
	"golang.org/x/sys/unix"
)

type watch struct {
	ch       api.Selectable
	interest Interest
	slot     int
}

type watchKey struct {
	fd       int
	interest Interest
}

// watchSet merges all interests on one descriptor into a single pollfd.
type watchSet struct {
	fds     []unix.PollFd
	slots   map[int]int
	seen    map[watchKey]struct{}
	watches []watch
}

func (s *watchSet) add(chs []api.Selectable, interest Interest) {
	for _, ch := range chs {
		if isNil(ch) {
			continue
		}
		fd, ok := ch.SelectFD()
		if !ok || fd < 0 {
			continue
		}
		key := watchKey{fd: fd, interest: interest}
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		slot, ok := s.slots[fd]
		if !ok {
			slot = len(s.fds)
			s.slots[fd] = slot
			s.fds = append(s.fds, unix.PollFd{Fd: int32(fd)})
		}
		s.fds[slot].Events |= pollEvents(interest)
		s.watches = append(s.watches, watch{ch: ch, interest: interest, slot: slot})
	}
}

func pollEvents(interest Interest) int16 {
	var ev int16
	if interest&Readable != 0 {
		ev |= unix.POLLIN
	}
	if interest&Writable != 0 {
		ev |= unix.POLLOUT
	}
	if interest&Exceptional != 0 {
		ev |= unix.POLLPRI
	}
	return ev
}

// readiness maps revents back onto the requested interest. Hang-ups and
// errors count as readable and writable so the following I/O call reports
// them.
func readiness(revents int16, interest Interest) Interest {
	var got Interest
	if interest&Readable != 0 && revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
		got |= Readable
	}
	if interest&Writable != 0 && revents&(unix.POLLOUT|unix.POLLHUP|unix.POLLERR) != 0 {
		got |= Writable
	}
	if interest&Exceptional != 0 && revents&unix.POLLPRI != 0 {
		got |= Exceptional
	}
	return got
}

// Select blocks until a channel in r is readable, in w is writable or in x
// has an exceptional condition, or timeout elapses. timeout 0 polls once;
// a negative timeout waits without bound. nil and closed channels are
// skipped, and a channel closed while the poll was in flight is never
// reported. With nothing to watch Select sleeps for a positive timeout and
// otherwise returns at once.
func Select(r, w, x []api.Selectable, timeout time.Duration) (Ready, error) {
	set := watchSet{
		slots: make(map[int]int),
		seen:  make(map[watchKey]struct{}),
	}
	set.add(r, Readable)
	set.add(w, Writable)
	set.add(x, Exceptional)

	if len(set.fds) == 0 {
		if timeout > 0 {
			time.Sleep(timeout)
		}
		return Ready{}, nil
	}

	n, err := poll(set.fds, timeout)
	if err != nil || n == 0 {
		return Ready{}, err
	}

	var ready Ready
	for _, wt := range set.watches {
		revents := set.fds[wt.slot].Revents
		if revents&unix.POLLNVAL != 0 || wt.ch.Closed() {
			continue
		}
		got := readiness(revents, wt.interest)
		switch {
		case got&Readable != 0:
			ready.Readable = append(ready.Readable, wt.ch)
		case got&Writable != 0:
			ready.Writable = append(ready.Writable, wt.ch)
		case got&Exceptional != 0:
			ready.Exceptional = append(ready.Exceptional, wt.ch)
		}
	}
	return ready, nil
}

// Wait polls a single descriptor for interest. When wake is a valid
// descriptor, its readability ends the wait early and sets Woken. A zero
// result means the timeout elapsed.
func Wait(fd int, interest Interest, wake int, timeout time.Duration) (Interest, error) {
	fds := make([]unix.PollFd, 1, 2)
	fds[0] = unix.PollFd{Fd: int32(fd), Events: pollEvents(interest)}
	if wake >= 0 {
		fds = append(fds, unix.PollFd{Fd: int32(wake), Events: unix.POLLIN})
	}

	n, err := poll(fds, timeout)
	if err != nil || n == 0 {
		return 0, err
	}
	got := readiness(fds[0].Revents, interest)
	if wake >= 0 && fds[1].Revents != 0 {
		got |= Woken
	}
	if fds[0].Revents&unix.POLLNVAL != 0 && got&Woken == 0 {
		return got, fmt.Errorf("%w: descriptor %d", api.ErrTransportClosed, fd)
	}
	return got, nil
}

// poll restarts on EINTR with whatever budget is left.
func poll(fds []unix.PollFd, timeout time.Duration) (int, error) {
	dl := NewDeadline(timeout)
	for {
		n, err := unix.Poll(fds, pollMillis(dl.Left()))
		if err == unix.EINTR {
			if dl.Expired() {
				return 0, nil
			}
			continue
		}
		if err != nil {
			return 0, os.NewSyscallError("poll", err)
		}
		return n, nil
	}
}
