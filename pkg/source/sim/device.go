package sim

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/source"
)

// ErrExecutionFailed is the write failure a real aircraft reports when it
// rejects a command.
var ErrExecutionFailed = errors.New("execution failed")

// ErrNotConnected is returned for writes to a disconnected device.
var ErrNotConnected = errors.New("device not connected")

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the logger for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) { d.logger = l }
}

// WithWriteLatency delays every write by latency.
func WithWriteLatency(latency time.Duration) Option {
	return func(d *Device) { d.writeLatency = latency }
}

// WithoutWriteEcho stops the device from reporting written values to its
// observers. Use it to model a source without a confirmation channel.
func WithoutWriteEcho() Option {
	return func(d *Device) { d.noEcho = true }
}

// Write records one accepted or rejected write.
type Write struct {
	Key   key.Identity
	Value any
	Err   error
}

type observer struct {
	id   uint64
	sink source.Sink
}

// Device is a simulated aircraft. It is safe for concurrent use.
type Device struct {
	// emitMu serializes deliveries so observers see changes in order.
	emitMu sync.Mutex

	mu           sync.Mutex
	values       map[key.Identity]any
	observers    map[key.Identity][]observer
	opens        map[key.Identity]int
	writes       []Write
	writeErr     error
	disconnected bool
	nextID       uint64

	writeLatency time.Duration
	noEcho       bool
	logger       *slog.Logger
}

// NewDevice creates a connected device without values.
func NewDevice(opts ...Option) *Device {
	d := &Device{
		values:    make(map[key.Identity]any),
		observers: make(map[key.Identity][]observer),
		opens:     make(map[key.Identity]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Read implements source.Source.
func (d *Device) Read(k key.AnyKey) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disconnected {
		return nil, false
	}
	v, ok := d.values[k.Identity()]
	return v, ok
}

// Observe implements source.Source. The current value, if any, is delivered
// before Observe returns. A disconnected device delivers ErrUnavailable.
func (d *Device) Observe(k key.AnyKey, sink source.Sink) (func(), error) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	id := k.Identity()

	d.mu.Lock()
	d.nextID++
	obsID := d.nextID
	d.observers[id] = append(d.observers[id], observer{id: obsID, sink: sink})
	d.opens[id]++
	value, hasValue := d.values[id]
	disconnected := d.disconnected
	d.mu.Unlock()

	d.debugLog("observe", "key", id.String())

	switch {
	case disconnected:
		sink.OnError(source.ErrUnavailable)
	case hasValue:
		sink.OnValue(value)
	}

	var once sync.Once
	return func() {
		once.Do(func() { d.removeObserver(id, obsID) })
	}, nil
}

func (d *Device) removeObserver(id key.Identity, obsID uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obs := d.observers[id]
	for i, o := range obs {
		if o.id == obsID {
			d.observers[id] = append(obs[:i:i], obs[i+1:]...)
			break
		}
	}
	if len(d.observers[id]) == 0 {
		delete(d.observers, id)
	}
	d.debugLog("cancel", "key", id.String())
}

// Write implements source.Source. The value must have the key's type.
// Unless WithoutWriteEcho is set, an accepted value is reported to the
// key's observers like any other change.
func (d *Device) Write(ctx context.Context, k key.AnyKey, value any) error {
	if d.writeLatency > 0 {
		timer := time.NewTimer(d.writeLatency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	err := k.Meta().Validate(value)

	d.mu.Lock()
	if err == nil {
		switch {
		case d.disconnected:
			err = ErrNotConnected
		case d.writeErr != nil:
			err = d.writeErr
		}
	}
	d.writes = append(d.writes, Write{Key: k.Identity(), Value: value, Err: err})
	d.mu.Unlock()

	d.debugLog("write", "key", k.String(), "value", value, "error", err)

	if err != nil {
		return err
	}
	if d.noEcho {
		d.mu.Lock()
		d.values[k.Identity()] = value
		d.mu.Unlock()
		return nil
	}
	d.Set(k, value)
	return nil
}

// Set changes the value of the key and delivers it to observers.
func (d *Device) Set(k key.AnyKey, value any) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	id := k.Identity()

	d.mu.Lock()
	d.values[id] = value
	sinks := d.sinksLocked(id)
	disconnected := d.disconnected
	d.mu.Unlock()

	if disconnected {
		return
	}
	for _, s := range sinks {
		s.OnValue(value)
	}
}

// Fail delivers err to the key's observers. A terminal error also drops
// them, as a real link does when it gives up.
func (d *Device) Fail(k key.AnyKey, err error) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	id := k.Identity()

	d.mu.Lock()
	sinks := d.sinksLocked(id)
	if source.IsTerminal(err) {
		delete(d.observers, id)
	}
	d.mu.Unlock()

	for _, s := range sinks {
		s.OnError(err)
	}
}

// Disconnect marks the device absent. Every observer receives
// ErrUnavailable; values are retained for Connect.
func (d *Device) Disconnect() {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	if d.disconnected {
		d.mu.Unlock()
		return
	}
	d.disconnected = true
	var sinks []source.Sink
	for id := range d.observers {
		sinks = append(sinks, d.sinksLocked(id)...)
	}
	d.mu.Unlock()

	d.debugLog("disconnect")
	for _, s := range sinks {
		s.OnError(source.ErrUnavailable)
	}
}

// Connect marks the device present again and redelivers every observed
// key's value.
func (d *Device) Connect() {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	type delivery struct {
		sink  source.Sink
		value any
	}

	d.mu.Lock()
	if !d.disconnected {
		d.mu.Unlock()
		return
	}
	d.disconnected = false
	var pending []delivery
	for id, obs := range d.observers {
		v, ok := d.values[id]
		if !ok {
			continue
		}
		for _, o := range obs {
			pending = append(pending, delivery{sink: o.sink, value: v})
		}
	}
	d.mu.Unlock()

	d.debugLog("connect")
	for _, p := range pending {
		p.sink.OnValue(p.value)
	}
}

// FailWrites makes every following write fail with err. Pass nil to accept
// writes again.
func (d *Device) FailWrites(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeErr = err
}

// SubscriptionCount returns the number of live observations of the key.
func (d *Device) SubscriptionCount(k key.AnyKey) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.observers[k.Identity()])
}

// OpenCount returns how often the key has been observed in total.
func (d *Device) OpenCount(k key.AnyKey) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens[k.Identity()]
}

// Writes returns the writes received so far.
func (d *Device) Writes() []Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Write(nil), d.writes...)
}

func (d *Device) sinksLocked(id key.Identity) []source.Sink {
	obs := d.observers[id]
	sinks := make([]source.Sink, len(obs))
	for i, o := range obs {
		sinks[i] = o.sink
	}
	return sinks
}

// debugLog logs a debug message if logging is enabled.
func (d *Device) debugLog(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug("sim: "+msg, args...)
	}
}

// Compile-time interface satisfaction check.
var _ source.Source = (*Device)(nil)
