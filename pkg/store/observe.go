package store

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aerolens/uxsdk-go/internal/mailbox"
	"github.com/aerolens/uxsdk-go/pkg/key"
)

// delivery is one item queued for an observer.
type delivery struct {
	value       any
	err         error
	unavailable bool
}

// ObserveOption configures an observer.
type ObserveOption func(*observeOptions)

type observeOptions struct {
	onError       func(error)
	onUnavailable func()
}

// WithErrorHandler receives source errors for the key. Without it errors
// are only logged.
func WithErrorHandler(fn func(error)) ObserveOption {
	return func(o *observeOptions) { o.onError = fn }
}

// WithUnavailableHandler is called when the source reports the device as
// unavailable. The cached value is cleared at that point.
func WithUnavailableHandler(fn func()) ObserveOption {
	return func(o *observeOptions) { o.onUnavailable = fn }
}

// Subscription is one observer of a key.
type Subscription struct {
	store  *Store
	entry  *entry
	box    *mailbox.Mailbox[delivery]
	closed atomic.Bool
	once   sync.Once
}

// Key returns the observed key.
func (sub *Subscription) Key() key.AnyKey {
	return sub.entry.key
}

// Close removes this observer. No delivery starts after Close returns; a
// callback already running completes. Closing the last observer of a key
// closes the source subscription. Close is idempotent and may be called
// from within the callback.
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		sub.closed.Store(true)
		sub.box.Close()
		sub.store.remove(sub.entry, sub)
	})
}

// shutdown closes the observer without touching the entry.
func (sub *Subscription) shutdown() {
	sub.once.Do(func() {
		sub.closed.Store(true)
		sub.box.Close()
	})
}

// Observe registers fn for values of k. fn is called with the cached value
// first, if any, then with every update in source order. Calls for one
// observer never overlap.
func Observe[T any](s *Store, k *key.Key[T], fn func(T), opts ...ObserveOption) (*Subscription, error) {
	return s.observe(k, func(v any) {
		t, ok := v.(T)
		if !ok {
			s.debugLog("dropping value of wrong type", "key", k.String(), "type", fmt.Sprintf("%T", v))
			return
		}
		fn(t)
	}, opts...)
}

// ObserveAny is the untyped form of Observe.
func (s *Store) ObserveAny(k key.AnyKey, fn func(any), opts ...ObserveOption) (*Subscription, error) {
	return s.observe(k, fn, opts...)
}

func (s *Store) observe(k key.AnyKey, fn func(any), opts ...ObserveOption) (*Subscription, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	if !k.Meta().Access.CanSubscribe() {
		return nil, fmt.Errorf("%w: %s", ErrNotObservable, k)
	}

	var o observeOptions
	for _, opt := range opts {
		opt(&o)
	}

	e := s.entry(k)
	sub := &Subscription{store: s, entry: e}
	sub.box = mailbox.New(func(d delivery) {
		if sub.closed.Load() {
			return
		}
		switch {
		case d.unavailable:
			if o.onUnavailable != nil {
				o.onUnavailable()
			}
		case d.err != nil:
			if o.onError != nil {
				o.onError(d.err)
			} else {
				s.debugLog("unhandled source error", "key", k.String(), "error", d.err)
			}
		default:
			fn(d.value)
		}
	})

	open, gen, err := s.add(e, sub)
	if err != nil {
		sub.shutdown()
		return nil, err
	}
	if open {
		s.openSource(e, gen)
	}
	return sub, nil
}
