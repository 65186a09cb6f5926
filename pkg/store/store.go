package store

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/log"
	"github.com/aerolens/uxsdk-go/pkg/source"
)

// Store errors.
var (
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store closed")

	// ErrNotObservable is returned when observing a key without subscribe
	// access.
	ErrNotObservable = errors.New("key is not observable")
)

// Store caches the latest value per key and shares one source subscription
// among all observers of a key. It is safe for concurrent use.
type Store struct {
	src     source.Source
	logger  *slog.Logger
	events  log.Logger
	metrics *Metrics

	mu      sync.RWMutex
	entries map[key.Identity]*entry
	closed  bool
}

// New creates a store on top of src.
func New(src source.Source, cfg Config) *Store {
	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Store{
		src:     src,
		logger:  cfg.Logger,
		events:  cfg.EventLogger,
		metrics: NewMetrics(reg),
		entries: make(map[key.Identity]*entry),
	}
}

// entry returns the entry for k, creating it on first use.
func (s *Store) entry(k key.AnyKey) *entry {
	id := k.Identity()

	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		return e
	}
	e = &entry{key: k, closed: s.closed}
	if !s.closed {
		s.entries[id] = e
	}
	return e
}

// lookup returns the entry for k without creating it.
func (s *Store) lookup(k key.AnyKey) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[k.Identity()]
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// CurrentValue returns the cached value of k. It never blocks on the source;
// the second result is false if no value is cached.
func CurrentValue[T any](s *Store, k *key.Key[T]) (T, bool) {
	var zero T
	e := s.lookup(k)
	if e == nil {
		return zero, false
	}
	v, ok := e.current()
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Fetch returns the cached value of k, or the source's current value when
// nothing is cached. The source value is not cached.
func Fetch[T any](s *Store, k *key.Key[T]) (T, bool) {
	if v, ok := CurrentValue(s, k); ok {
		return v, true
	}
	var zero T
	v, ok := s.src.Read(k)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// CachedValue is the untyped form of CurrentValue.
func (s *Store) CachedValue(k key.AnyKey) (any, bool) {
	e := s.lookup(k)
	if e == nil {
		return nil, false
	}
	return e.current()
}

// SourceSubscriptions returns 1 if a source subscription for k is open,
// otherwise 0.
func (s *Store) SourceSubscriptions(k key.AnyKey) int {
	e := s.lookup(k)
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return 1
	}
	return 0
}

// ObserverCount returns the number of open observers of k.
func (s *Store) ObserverCount(k key.AnyKey) int {
	e := s.lookup(k)
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// Metrics returns the store metrics.
func (s *Store) Metrics() *Metrics {
	return s.metrics
}

// Close cancels every source subscription and closes every observer.
// Later Observe calls fail with ErrClosed and writes resolve to a
// WriteFailedError wrapping ErrClosed. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		subs := e.subs
		cancel := e.cancel
		e.subs = nil
		e.cancel = nil
		e.opened = false
		e.closed = true
		e.gen++
		e.mu.Unlock()

		ns := e.key.Identity().Namespace
		for _, sub := range subs {
			sub.shutdown()
			s.metrics.Observers.WithLabelValues(ns).Dec()
		}
		if cancel != nil {
			cancel()
			s.metrics.SourceSubscriptions.WithLabelValues(ns).Dec()
			s.traceSubscription(e.key, log.ActionSourceClose, 0)
		}
	}

	s.debugLog("closed", "keys", len(entries))
	return nil
}

// debugLog logs a debug message if logging is enabled.
func (s *Store) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug("store: "+msg, args...)
	}
}

// trace sends an event to the event logger if tracing is enabled.
func (s *Store) trace(k key.AnyKey, category log.Category, fill func(*log.Event)) {
	if s.events == nil {
		return
	}
	ev := log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentStore,
		Category:  category,
		Key:       k.String(),
	}
	fill(&ev)
	s.events.Log(ev)
}

func (s *Store) traceSubscription(k key.AnyKey, action log.SubscriptionAction, observers int) {
	s.trace(k, log.CategorySubscription, func(ev *log.Event) {
		ev.Subscription = &log.SubscriptionEvent{Action: action, Observers: observers}
	})
}
