// Package store implements the keyed store: a process-wide cache of the
// latest value per key that brokers subscriptions to a device source.
//
// # Observation
//
// Observe registers a callback for a key. The first delivery is the cached
// value, if one is known, followed by every update in the order the source
// produced them. All observers of a key share one source subscription: the
// first observer opens it and the last one to close tears it down.
//
// Each observer has its own delivery queue and goroutine. A slow observer
// only delays itself; the source and other observers are never blocked.
//
// # Errors
//
// source.ErrUnavailable clears the cached value and is delivered to the
// observers' unavailable handlers as an absent value. Other source errors go
// to the observers' error handlers. An error marked with source.Terminal
// also closes the source subscription; the next Observe opens a new one.
// The store never retries on its own.
//
// # Writes
//
// SetValue forwards a write to the source and returns a Completion. Failed
// writes resolve to a *WriteFailedError and never change the cache. Keys
// declared with key.Optimistic publish the written value once the source
// accepts it; other keys wait for the source to report the new value.
//
// # Lifecycle
//
// A Store is created once by the application with New and handed to every
// widget model. Close tears down all source subscriptions and observers.
package store
