// Package source defines the contract between the keyed store and the
// device SDK (or any other provider of key values).
//
// A Source offers three operations per key: read the current value, observe
// value changes, and write a value. The store opens at most one Observe per
// key and fans values out to its own observers.
package source

import (
	"context"
	"errors"

	"github.com/aerolens/uxsdk-go/pkg/key"
)

// Source errors.
var (
	// ErrUnavailable reports that the device backing a key is not connected.
	// The store delivers it to observers as an absent value, not as an error.
	ErrUnavailable = errors.New("source unavailable")

	// ErrNoRoute reports that no source serves the key's namespace.
	ErrNoRoute = errors.New("no source for namespace")
)

// Source is the device-side collaborator of the store.
type Source interface {
	// Read returns the current value of the key without blocking.
	// The second result is false if the value is unknown.
	Read(k key.AnyKey) (any, bool)

	// Observe starts delivering values of the key to sink, in the order the
	// source produces them. The returned cancel function stops delivery and
	// must be idempotent. Sources may deliver the current value from within
	// Observe.
	Observe(k key.AnyKey, sink Sink) (cancel func(), err error)

	// Write sets the value of the key and returns once the source has
	// accepted or rejected it.
	Write(ctx context.Context, k key.AnyKey, value any) error
}

// Sink receives values and errors from an observed key.
type Sink interface {
	OnValue(value any)
	OnError(err error)
}

// SinkFuncs adapts a pair of functions to Sink. Nil functions are ignored.
type SinkFuncs struct {
	Value func(any)
	Error func(error)
}

// OnValue calls Value.
func (s SinkFuncs) OnValue(value any) {
	if s.Value != nil {
		s.Value(value)
	}
}

// OnError calls Error.
func (s SinkFuncs) OnError(err error) {
	if s.Error != nil {
		s.Error(err)
	}
}

// terminalError marks an error after which the source stops delivering.
type terminalError struct {
	err error
}

func (e *terminalError) Error() string { return e.err.Error() }
func (e *terminalError) Unwrap() error { return e.err }

// Terminal marks err as ending the observation. The store closes its source
// subscription on a terminal error and reopens it on the next Observe.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &terminalError{err: err}
}

// IsTerminal reports whether err was marked with Terminal.
func IsTerminal(err error) bool {
	var t *terminalError
	return errors.As(err, &t)
}

// Compile-time interface satisfaction check.
var _ Sink = SinkFuncs{}
