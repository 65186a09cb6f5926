package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/log"
)

// Write errors.
var (
	// ErrWriteFailed matches every *WriteFailedError.
	ErrWriteFailed = errors.New("write failed")

	// ErrNotWritable is the reason for writes to keys without write access.
	ErrNotWritable = errors.New("key is not writable")
)

// WriteFailedError is the failure outcome of SetValue.
type WriteFailedError struct {
	Key    key.Identity
	Reason error
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("write failed: %s: %v", e.Key, e.Reason)
}

// Unwrap returns ErrWriteFailed and the reason, so errors.Is matches both.
func (e *WriteFailedError) Unwrap() []error {
	return []error{ErrWriteFailed, e.Reason}
}

// Completion is the asynchronous result of a write.
type Completion struct {
	done chan struct{}
	err  error
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Resolved returns a completion that has already finished with err.
func Resolved(err error) *Completion {
	c := newCompletion()
	c.resolve(err)
	return c
}

func (c *Completion) resolve(err error) {
	c.err = err
	close(c.done)
}

// Done is closed when the write has finished.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Err returns the outcome once Done is closed, and nil before.
func (c *Completion) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the write finishes or ctx is done.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetValue writes v to k through the source. The completion resolves to nil
// on success or to a *WriteFailedError. A failed write never changes the
// cached value.
func SetValue[T any](ctx context.Context, s *Store, k *key.Key[T], v T) *Completion {
	return s.write(ctx, k, v)
}

// SetAny is the untyped form of SetValue. v must have the key's type.
func (s *Store) SetAny(ctx context.Context, k key.AnyKey, v any) *Completion {
	return s.write(ctx, k, v)
}

func (s *Store) write(ctx context.Context, k key.AnyKey, v any) *Completion {
	meta := k.Meta()
	fail := func(reason error) *Completion {
		s.metrics.Writes.WithLabelValues(k.Identity().Namespace, "failed").Inc()
		return Resolved(&WriteFailedError{Key: k.Identity(), Reason: reason})
	}

	switch {
	case s.isClosed():
		return fail(ErrClosed)
	case !meta.Access.CanWrite():
		return fail(ErrNotWritable)
	}
	if err := meta.Validate(v); err != nil {
		return fail(err)
	}

	s.trace(k, log.CategoryWrite, func(ev *log.Event) {
		ev.Write = &log.WriteEvent{Phase: log.WriteRequest, Value: v, Policy: meta.WritePolicy.String()}
	})

	seq := s.updateSeq(k)
	c := newCompletion()
	go func() {
		start := time.Now()
		err := s.src.Write(ctx, k, v)
		elapsed := time.Since(start)

		s.trace(k, log.CategoryWrite, func(ev *log.Event) {
			ev.Write = &log.WriteEvent{Phase: log.WriteResult, Value: v, Duration: &elapsed}
			if err != nil {
				ev.Write.Error = err.Error()
			}
		})

		if err != nil {
			s.metrics.Writes.WithLabelValues(k.Identity().Namespace, "failed").Inc()
			s.debugLog("write failed", "key", k.String(), "error", err)
			c.resolve(&WriteFailedError{Key: k.Identity(), Reason: err})
			return
		}

		s.metrics.Writes.WithLabelValues(k.Identity().Namespace, "ok").Inc()
		if meta.WritePolicy == key.WriteOptimistic {
			s.publishOptimistic(k, v, seq)
		}
		c.resolve(nil)
	}()
	return c
}
