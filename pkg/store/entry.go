package store

import (
	"errors"
	"sync"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/log"
	"github.com/aerolens/uxsdk-go/pkg/source"
)

// entry is the per-key state. Its mutex is never held while calling into
// the source.
type entry struct {
	key key.AnyKey

	mu       sync.Mutex
	value    any
	hasValue bool
	subs     []*Subscription

	// opened is true while a source subscription is open or being opened.
	opened bool

	// gen identifies the current source subscription. Deliveries carrying
	// an older generation are dropped.
	gen    uint64
	cancel func()

	// seq counts source updates. An optimistic write only publishes if no
	// update arrived while it was in flight.
	seq uint64

	// closed is set by Store.Close; no observer is added afterwards.
	closed bool
}

func (e *entry) current() (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value, e.hasValue
}

// publishLocked caches v and queues it for every observer.
func (e *entry) publishLocked(v any) int {
	e.value = v
	e.hasValue = true
	for _, sub := range e.subs {
		sub.box.Push(delivery{value: v})
	}
	return len(e.subs)
}

// add registers an observer, replays the cached value to it and reports
// whether the caller must open the source subscription. It fails with
// ErrClosed once the store is closed.
func (s *Store) add(e *entry, sub *Subscription) (open bool, gen uint64, err error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false, 0, ErrClosed
	}
	e.subs = append(e.subs, sub)
	if e.hasValue {
		sub.box.Push(delivery{value: e.value})
	}
	n := len(e.subs)
	if !e.opened {
		e.opened = true
		e.gen++
		open, gen = true, e.gen
	}
	e.mu.Unlock()

	s.metrics.Observers.WithLabelValues(e.key.Identity().Namespace).Inc()
	s.traceSubscription(e.key, log.ActionObserve, n)
	return open, gen, nil
}

// openSource opens the source subscription for generation gen.
func (s *Store) openSource(e *entry, gen uint64) {
	ns := e.key.Identity().Namespace
	cancel, err := s.src.Observe(e.key, &entrySink{store: s, entry: e, gen: gen})

	e.mu.Lock()
	if e.gen != gen {
		// Every observer left, or a terminal error arrived, while opening.
		e.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return
	}
	if err != nil {
		e.opened = false
		e.gen++
		for _, sub := range e.subs {
			sub.box.Push(delivery{err: err})
		}
		e.mu.Unlock()

		s.metrics.SourceErrors.WithLabelValues(ns, "open").Inc()
		s.traceError(e.key, err, "observe")
		s.debugLog("source observe failed", "key", e.key.String(), "error", err)
		return
	}
	e.cancel = cancel
	n := len(e.subs)
	e.mu.Unlock()

	s.metrics.SourceSubscriptions.WithLabelValues(ns).Inc()
	s.traceSubscription(e.key, log.ActionSourceOpen, n)
	s.debugLog("source subscription opened", "key", e.key.String())
}

// remove unregisters an observer and closes the source subscription after
// the last one.
func (s *Store) remove(e *entry, sub *Subscription) {
	e.mu.Lock()
	found := false
	for i, other := range e.subs {
		if other == sub {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			found = true
			break
		}
	}
	n := len(e.subs)
	var cancel func()
	if found && n == 0 && e.opened {
		cancel = e.cancel
		e.cancel = nil
		e.opened = false
		e.gen++
	}
	e.mu.Unlock()

	if !found {
		return
	}

	ns := e.key.Identity().Namespace
	s.metrics.Observers.WithLabelValues(ns).Dec()
	s.traceSubscription(e.key, log.ActionUnobserve, n)
	if cancel != nil {
		cancel()
		s.metrics.SourceSubscriptions.WithLabelValues(ns).Dec()
		s.traceSubscription(e.key, log.ActionSourceClose, 0)
		s.debugLog("source subscription closed", "key", e.key.String())
	}
}

// updateSeq returns the source update count of k, 0 for a key without an
// entry.
func (s *Store) updateSeq(k key.AnyKey) uint64 {
	e := s.lookup(k)
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}

// publishOptimistic caches a written value as if the source had reported
// it. Nothing is published for a key without observers, or when a source
// update arrived since seq was taken: that update is newer than v.
func (s *Store) publishOptimistic(k key.AnyKey, v any, seq uint64) {
	e := s.lookup(k)
	if e == nil {
		return
	}
	e.mu.Lock()
	if !e.opened || len(e.subs) == 0 || e.seq != seq {
		e.mu.Unlock()
		s.debugLog("optimistic value superseded", "key", k.String())
		return
	}
	n := e.publishLocked(v)
	e.mu.Unlock()

	s.traceValue(e.key, v, true, false, n)
}

// entrySink receives source deliveries for one generation of an entry.
type entrySink struct {
	store *Store
	entry *entry
	gen   uint64
}

func (es *entrySink) stale() bool {
	return es.entry.gen != es.gen || !es.entry.opened
}

// OnValue implements source.Sink.
func (es *entrySink) OnValue(v any) {
	e := es.entry
	e.mu.Lock()
	if es.stale() {
		e.mu.Unlock()
		return
	}
	e.seq++
	n := e.publishLocked(v)
	e.mu.Unlock()

	es.store.metrics.Updates.WithLabelValues(e.key.Identity().Namespace).Inc()
	es.store.traceValue(e.key, v, false, false, n)
}

// OnError implements source.Sink.
func (es *entrySink) OnError(err error) {
	s := es.store
	e := es.entry
	ns := e.key.Identity().Namespace

	e.mu.Lock()
	if es.stale() {
		e.mu.Unlock()
		return
	}

	if errors.Is(err, source.ErrUnavailable) {
		e.seq++
		e.value = nil
		e.hasValue = false
		for _, sub := range e.subs {
			sub.box.Push(delivery{unavailable: true})
		}
		n := len(e.subs)
		e.mu.Unlock()

		s.metrics.SourceErrors.WithLabelValues(ns, "unavailable").Inc()
		s.traceValue(e.key, nil, false, true, n)
		return
	}

	terminal := source.IsTerminal(err)
	for _, sub := range e.subs {
		sub.box.Push(delivery{err: err})
	}
	var cancel func()
	if terminal {
		cancel = e.cancel
		e.cancel = nil
		e.opened = false
		e.gen++
	}
	e.mu.Unlock()

	kind := "error"
	if terminal {
		kind = "terminal"
	}
	s.metrics.SourceErrors.WithLabelValues(ns, kind).Inc()
	s.traceError(e.key, err, "observe")
	s.debugLog("source error", "key", e.key.String(), "error", err, "terminal", terminal)

	if cancel != nil {
		cancel()
		s.metrics.SourceSubscriptions.WithLabelValues(ns).Dec()
		s.traceSubscription(e.key, log.ActionSourceClose, 0)
	}
}

func (s *Store) traceValue(k key.AnyKey, v any, optimistic, unavailable bool, observers int) {
	s.trace(k, log.CategoryValue, func(ev *log.Event) {
		ev.Value = &log.ValueEvent{
			Value:       v,
			Optimistic:  optimistic,
			Unavailable: unavailable,
			Observers:   observers,
		}
	})
}

func (s *Store) traceError(k key.AnyKey, err error, context string) {
	s.trace(k, log.CategoryError, func(ev *log.Event) {
		ev.Error = &log.ErrorEventData{
			Message:  err.Error(),
			Terminal: source.IsTerminal(err),
			Context:  context,
		}
	})
}

// Compile-time interface satisfaction check.
var _ source.Sink = (*entrySink)(nil)
