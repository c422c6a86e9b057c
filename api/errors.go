// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-chan.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrNoCodec           = fmt.Errorf("no codec registered")
	ErrEndOfStream       = fmt.Errorf("end of stream")
	ErrTimeout           = fmt.Errorf("operation timeout")
	ErrWouldBlock        = fmt.Errorf("operation would block")
	ErrCancelled         = fmt.Errorf("future cancelled")
	ErrAlreadyResolved   = fmt.Errorf("future already resolved")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
	ErrNotSupported      = fmt.Errorf("operation not supported")
	ErrTransportClosed   = fmt.Errorf("transport is closed")
	ErrCodecTypeMismatch = fmt.Errorf("codec value type mismatch")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeNoCodec
	ErrCodeEndOfStream
	ErrCodeTimeout
	ErrCodeInvalidArgument
	ErrCodeNotSupported
	ErrCodeInternal
)

// sentinels maps codes onto the errors.Is targets above.
var sentinels = map[ErrorCode]error{
	ErrCodeNoCodec:         ErrNoCodec,
	ErrCodeEndOfStream:     ErrEndOfStream,
	ErrCodeTimeout:         ErrTimeout,
	ErrCodeInvalidArgument: ErrInvalidArgument,
	ErrCodeNotSupported:    ErrNotSupported,
}

// Error represents a structured error with code, context and an optional
// underlying cause.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if len(e.Context) > 0 {
		msg = fmt.Sprintf("%s (context: %+v)", msg, e.Context)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes the sentinel for the error code and the cause, so
// errors.Is matches either.
func (e *Error) Unwrap() []error {
	var errs []error
	if s, ok := sentinels[e.Code]; ok {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// WithCause records the error that led to e.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf reports the ErrorCode carried by err, or classifies it by sentinel.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	for code, s := range sentinels {
		if errors.Is(err, s) {
			return code
		}
	}
	return ErrCodeInternal
}
