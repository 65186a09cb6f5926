// Package processor provides DataProcessor, a single-value reactive cell with
// replay-latest semantics.
//
// A DataProcessor always holds a value. Every subscriber first receives the
// value current at subscription time, then each later update in emission
// order. Each subscriber owns its own delivery queue, so a slow subscriber
// never delays the producer or other subscribers.
//
// Only the owner (typically a widget model) calls OnNext. Subscriptions end
// when the subscriber closes them or when the owner calls Dispose.
package processor

import (
	"context"
	"sync"

	"github.com/aerolens/uxsdk-go/internal/mailbox"
)

// Observable is the read-only view of a DataProcessor that widget models
// expose to their widgets.
type Observable[T any] interface {
	Value() T
	Subscribe(fn func(T)) *Subscription[T]
	Stream(ctx context.Context) <-chan T
}

// Option configures a DataProcessor.
type Option[T any] func(*DataProcessor[T])

// WithEqual suppresses an update that equals the current value.
func WithEqual[T any](equal func(a, b T) bool) Option[T] {
	return func(p *DataProcessor[T]) { p.equal = equal }
}

// Comparable suppresses consecutive duplicates using ==.
func Comparable[T comparable]() Option[T] {
	return WithEqual(func(a, b T) bool { return a == b })
}

// DataProcessor is a replay-latest value cell. It is safe for concurrent use.
type DataProcessor[T any] struct {
	mu       sync.Mutex
	value    T
	equal    func(a, b T) bool
	subs     map[*Subscription[T]]struct{}
	disposed bool
}

// New creates a processor holding initial.
func New[T any](initial T, opts ...Option[T]) *DataProcessor[T] {
	p := &DataProcessor[T]{
		value: initial,
		subs:  make(map[*Subscription[T]]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnNext sets the current value and queues it for every subscriber.
// Updates after Dispose are ignored.
func (p *DataProcessor[T]) OnNext(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return
	}
	if p.equal != nil && p.equal(p.value, v) {
		return
	}
	p.value = v

	// Queued under the lock so every subscriber sees the same order.
	for sub := range p.subs {
		sub.box.Push(v)
	}
}

// Value returns the current value.
func (p *DataProcessor[T]) Value() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// SubscriberCount returns the number of open subscriptions.
func (p *DataProcessor[T]) SubscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Subscribe registers fn. fn is first called with the current value, then
// with every update, on a goroutine owned by the subscription. Calls to fn
// are never concurrent with each other.
//
// Subscribing to a disposed processor returns a closed subscription.
func (p *DataProcessor[T]) Subscribe(fn func(T)) *Subscription[T] {
	sub := &Subscription[T]{
		p:    p,
		done: make(chan struct{}),
	}
	sub.box = mailbox.New(func(v T) {
		select {
		case <-sub.done:
			return
		default:
		}
		fn(v)
	})

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		sub.closeLocked()
		return sub
	}
	sub.box.Push(p.value)
	p.subs[sub] = struct{}{}
	return sub
}

// Stream returns a channel carrying the current value followed by every
// update. The channel is closed when ctx is done or the processor is
// disposed. A receiver that falls behind backs up only its own stream.
func (p *DataProcessor[T]) Stream(ctx context.Context) <-chan T {
	ch := make(chan T)
	quit := make(chan struct{})
	sub := p.Subscribe(func(v T) {
		select {
		case ch <- v:
		case <-ctx.Done():
		case <-quit:
		}
	})

	go func() {
		select {
		case <-ctx.Done():
		case <-sub.Done():
		}
		close(quit)
		sub.Close()
		<-sub.box.Done()
		close(ch)
	}()

	return ch
}

// Dispose closes every subscription. Later OnNext calls are ignored.
// It is safe to call Dispose more than once.
func (p *DataProcessor[T]) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return
	}
	p.disposed = true
	for sub := range p.subs {
		sub.closeLocked()
	}
	p.subs = nil
}

// Subscription is one subscriber of a DataProcessor.
type Subscription[T any] struct {
	p    *DataProcessor[T]
	box  *mailbox.Mailbox[T]
	once sync.Once
	done chan struct{}
}

// Close stops delivery. A callback already running completes; no later
// callback starts. Close is safe to call more than once and from within the
// callback.
func (s *Subscription[T]) Close() {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	if s.p.subs != nil {
		delete(s.p.subs, s)
	}
	s.closeLocked()
}

// Done is closed when the subscription ends.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription[T]) closeLocked() {
	s.once.Do(func() {
		close(s.done)
		s.box.Close()
	})
}

// Compile-time interface satisfaction check.
var _ Observable[int] = (*DataProcessor[int])(nil)
