package widget

import (
	"sync/atomic"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/processor"
	"github.com/aerolens/uxsdk-go/pkg/store"
)

// Binder registers store bindings for one setup of a model. It is valid
// only during the InSetup or Module.Setup call it was passed to.
type Binder struct {
	model   *Model
	gen     uint64
	expired atomic.Bool
}

// Store returns the model's store.
func (b *Binder) Store() *store.Store {
	return b.model.store
}

// Model returns the model being set up.
func (b *Binder) Model() *Model {
	return b.model
}

func (b *Binder) expire() {
	b.expired.Store(true)
}

// BindOption configures a binding.
type BindOption func(*bindOptions)

type bindOptions struct {
	onError       func(error)
	onUnavailable func()
}

// WithOnError propagates source errors on the binding to fn. Without it
// errors are absorbed and the processor keeps its last value.
func WithOnError(fn func(error)) BindOption {
	return func(o *bindOptions) { o.onError = fn }
}

// WithOnUnavailable calls fn when the device behind the key disconnects.
func WithOnUnavailable(fn func()) BindOption {
	return func(o *bindOptions) { o.onUnavailable = fn }
}

// Bind pipes every value of k into p.
func Bind[T any](b *Binder, k *key.Key[T], p *processor.DataProcessor[T], opts ...BindOption) error {
	return BindFunc(b, k, p.OnNext, opts...)
}

// BindMap pipes every value of k, transformed by fn, into p.
func BindMap[T, U any](b *Binder, k *key.Key[T], p *processor.DataProcessor[U], fn func(T) U, opts ...BindOption) error {
	return BindFunc(b, k, func(v T) { p.OnNext(fn(v)) }, opts...)
}

// BindFunc calls fn with every value of k. fn runs serialized with the
// model's hooks and is followed by UpdateStates.
func BindFunc[T any](b *Binder, k *key.Key[T], fn func(T), opts ...BindOption) error {
	if b.expired.Load() {
		return ErrBinderExpired
	}

	var o bindOptions
	for _, opt := range opts {
		opt(&o)
	}

	m := b.model
	gen := b.gen

	storeOpts := []store.ObserveOption{
		store.WithErrorHandler(func(err error) {
			m.deliver(gen, func() {
				if o.onError != nil {
					o.onError(err)
					return
				}
				m.debugLog("source error absorbed", "key", k.String(), "error", err)
			})
		}),
		store.WithUnavailableHandler(func() {
			m.deliver(gen, func() {
				if o.onUnavailable != nil {
					o.onUnavailable()
				}
			})
		}),
	}

	sub, err := store.Observe(m.store, k, func(v T) {
		m.deliver(gen, func() { fn(v) })
	}, storeOpts...)
	if err != nil {
		return err
	}

	// The model lock is held by Setup.
	m.bindings = append(m.bindings, sub)
	return nil
}
