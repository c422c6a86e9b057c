// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness types and deadline accounting.

package reactor

import (
	"math"
	"reflect"
	"time"

	"github.com/momentics/hioload-chan/api"
)

// Interest is a set of readiness conditions.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
	Exceptional
	// Woken marks a Wait that returned because its wake descriptor fired.
	Woken
)

// Ready holds the ready subsets of a Select call. Order is unspecified.
type Ready struct {
	Readable    []api.Selectable
	Writable    []api.Selectable
	Exceptional []api.Selectable
}

// Empty reports whether nothing became ready.
func (r Ready) Empty() bool {
	return len(r.Readable) == 0 && len(r.Writable) == 0 && len(r.Exceptional) == 0
}

// Deadline tracks the remaining budget of a timed operation.
type Deadline struct {
	at      time.Time
	bounded bool
}

// NewDeadline starts a deadline timeout from now. A negative timeout never
// expires.
func NewDeadline(timeout time.Duration) Deadline {
	if timeout < 0 {
		return Deadline{}
	}
	return Deadline{at: time.Now().Add(timeout), bounded: true}
}

// Left returns the budget to hand to a poll: api.NoTimeout when unbounded,
// otherwise the time until expiry clamped at zero.
func (d Deadline) Left() time.Duration {
	if !d.bounded {
		return api.NoTimeout
	}
	return max(time.Until(d.at), 0)
}

// Expired reports whether a bounded deadline has passed.
func (d Deadline) Expired() bool {
	return d.bounded && !time.Now().Before(d.at)
}

// pollMillis converts a budget to poll(2) milliseconds, rounding up so a
// sub-millisecond budget still sleeps instead of spinning.
func pollMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	ms := (d + time.Millisecond - 1) / time.Millisecond
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(ms)
}

// isNil catches nil interfaces and typed nil pointers in watch sets.
func isNil(s api.Selectable) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
