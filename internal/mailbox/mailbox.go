// Package mailbox provides an unbounded, ordered delivery queue with a
// dedicated consumer goroutine.
//
// Each subscriber of the store or of a data processor owns one mailbox. A
// producer never blocks on a slow consumer; the backlog only grows in that
// consumer's own queue.
package mailbox

import "sync"

// Mailbox delivers pushed items to a handler in push order.
type Mailbox[T any] struct {
	mu      sync.Mutex
	items   []T
	closed  bool
	wake    chan struct{}
	done    chan struct{}
	handler func(T)
}

// New creates a mailbox and starts its consumer goroutine.
func New[T any](handler func(T)) *Mailbox[T] {
	m := &Mailbox[T]{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		handler: handler,
	}
	go m.run()
	return m
}

// Push appends an item. Returns false if the mailbox is closed.
func (m *Mailbox[T]) Push(item T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, item)
	m.mu.Unlock()

	m.signal()
	return true
}

// Len returns the number of items not yet handed to the handler.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close discards the backlog and stops the consumer goroutine.
// No new delivery starts after Close returns; a handler call already in
// progress runs to completion. Close is safe to call more than once and from
// within the handler.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.items = nil
	m.mu.Unlock()

	m.signal()
}

// Done is closed once the consumer goroutine has exited.
func (m *Mailbox[T]) Done() <-chan struct{} {
	return m.done
}

func (m *Mailbox[T]) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Mailbox[T]) run() {
	defer close(m.done)

	for {
		m.mu.Lock()
		for len(m.items) == 0 && !m.closed {
			m.mu.Unlock()
			<-m.wake
			m.mu.Lock()
		}
		if m.closed {
			m.mu.Unlock()
			return
		}

		item := m.items[0]
		var zero T
		m.items[0] = zero
		m.items = m.items[1:]
		if len(m.items) == 0 {
			m.items = nil
		}
		m.mu.Unlock()

		m.handler(item)
	}
}
