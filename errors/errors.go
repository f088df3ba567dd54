// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package errors

import (
	"errors"
	"fmt"

	"github.com/tochemey/supervise/address"
)

var (
	// ErrRequestTimeout is delivered to a requester when no reply arrived before
	// the request deadline.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrAlreadyRegistered is returned by the registry when a name is already taken.
	ErrAlreadyRegistered = errors.New("service already registered")

	// ErrUnknownService is returned by the registry when discovering a name that
	// is not registered.
	ErrUnknownService = errors.New("unknown service")

	// ErrActorMisconfigured is returned when a plugin rejects an init or shutdown
	// handshake, or when an actor lacks a plugin the lifecycle requires.
	ErrActorMisconfigured = errors.New("actor is misconfigured")

	// ErrMissingActor is returned when an operation targets an address that is
	// not tracked by its supervisor.
	ErrMissingActor = errors.New("actor is missing")

	// ErrSupervisorWrongState is returned when an operation is invalid for the
	// current lifecycle state of the supervisor.
	ErrSupervisorWrongState = errors.New("supervisor is in the wrong state")

	// ErrShutdownTimeout is reported when a child failed to confirm its shutdown
	// in time and was forcibly removed.
	ErrShutdownTimeout = errors.New("shutdown timed out")

	// ErrInitAborted answers a pending init request when the actor is asked to
	// shut down before its initialization completed.
	ErrInitAborted = errors.New("initialization aborted by shutdown")

	// ErrDiscoveryCancelled answers a discovery promise cancelled by its
	// requester or dropped by a registry shutting down.
	ErrDiscoveryCancelled = errors.New("discovery cancelled")

	// ErrInboxFull is reported when a bounded inbound buffer rejects an envelope.
	ErrInboxFull = errors.New("inbox is full")

	// ErrDriverStopped is returned when a driver is used after it was stopped.
	ErrDriverStopped = errors.New("driver is stopped")

	// ErrInvalidTimeout is returned when a timeout is not strictly positive.
	ErrInvalidTimeout = errors.New("timeout must be greater than zero")

	// ErrActorAlreadyBound is returned when an actor value is spawned twice.
	ErrActorAlreadyBound = errors.New("actor is already bound to a supervisor")

	// ErrUndefinedActor is returned when a nil actor is given.
	ErrUndefinedActor = errors.New("actor is not defined")
)

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError from a recovered value
func NewPanicError(recovered any) *PanicError {
	if err, ok := recovered.(error); ok {
		return &PanicError{err}
	}
	return &PanicError{fmt.Errorf("%v", recovered)}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}

// ChildError reports a failure of a supervised actor
type ChildError struct {
	child address.Address
	err   error
}

// enforce compilation error
var _ error = (*ChildError)(nil)

// NewChildError creates an instance of ChildError
func NewChildError(child address.Address, err error) *ChildError {
	return &ChildError{child: child, err: err}
}

// Child returns the address of the failed actor
func (e *ChildError) Child() address.Address {
	return e.child
}

// Error implements the standard error interface
func (e *ChildError) Error() string {
	return fmt.Sprintf("actor %s: %v", e.child, e.err)
}

func (e *ChildError) Unwrap() error {
	return e.err
}

// NewShutdownTimeoutError wraps the cause of a failed shutdown so that it
// matches both ErrShutdownTimeout and the cause
func NewShutdownTimeoutError(child address.Address, cause error) error {
	return NewChildError(child, fmt.Errorf("%w: %w", ErrShutdownTimeout, cause))
}
