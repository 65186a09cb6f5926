package widget

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/aerolens/uxsdk-go/pkg/log"
	"github.com/aerolens/uxsdk-go/pkg/store"
)

// Lifecycle errors.
var (
	ErrAlreadySetup     = errors.New("model already set up")
	ErrModuleAfterSetup = errors.New("module added after setup")
	ErrDisposed         = errors.New("model disposed")
	ErrBinderExpired    = errors.New("binder used outside setup")
)

// State is the lifecycle state of a model.
type State uint32

const (
	StateCreated State = iota
	StateSetup
	StateActive
	StateCleanedUp
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateSetup:
		return "SETUP"
	case StateActive:
		return "ACTIVE"
	case StateCleanedUp:
		return "CLEANED_UP"
	default:
		return "UNKNOWN"
	}
}

// Behavior is the business logic of a concrete widget model.
type Behavior interface {
	// InSetup binds keys through b. Returning an error aborts Setup.
	InSetup(b *Binder) error

	// InCleanup releases resources beyond the bindings, which the model
	// closes itself.
	InCleanup()

	// UpdateStates recomputes the derived processors from the latest raw
	// values. It must be idempotent and write only to the model's own
	// processors.
	UpdateStates()
}

// Base provides no-op hooks for embedding.
type Base struct{}

// InSetup does nothing.
func (Base) InSetup(*Binder) error { return nil }

// InCleanup does nothing.
func (Base) InCleanup() {}

// UpdateStates does nothing.
func (Base) UpdateStates() {}

// Module is a reusable fragment of model logic. Its bindings belong to the
// host model and are closed by the host's Cleanup.
type Module interface {
	Setup(b *Binder) error
	Cleanup()
}

// Disposer is implemented by processors a model owns.
type Disposer interface {
	Dispose()
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithEventLogger sets the event trace logger.
func WithEventLogger(l log.Logger) Option {
	return func(m *Model) { m.events = l }
}

// WithName overrides the model name used in logs and traces.
func WithName(name string) Option {
	return func(m *Model) { m.name = name }
}

// Model is the lifecycle driver of one widget. It is safe for concurrent
// use.
type Model struct {
	id       string
	name     string
	store    *store.Store
	behavior Behavior
	logger   *slog.Logger
	events   log.Logger

	// state mirrors the guarded state for lock-free reads.
	state atomic.Uint32

	mu       sync.Mutex
	gen      uint64
	bindings []*store.Subscription
	modules  []Module
	owned    []Disposer
	disposed bool
}

// NewModel creates a model in state CREATED.
func NewModel(s *store.Store, b Behavior, opts ...Option) *Model {
	m := &Model{
		id:       uuid.New().String(),
		name:     strings.TrimPrefix(fmt.Sprintf("%T", b), "*"),
		store:    s,
		behavior: b,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ID returns the unique instance id.
func (m *Model) ID() string { return m.id }

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Store returns the store the model binds to.
func (m *Model) Store() *store.Store { return m.store }

// State returns the lifecycle state.
func (m *Model) State() State {
	return State(m.state.Load())
}

// BindingCount returns the number of open bindings.
func (m *Model) BindingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bindings)
}

// AddModule composes mod into the model. Modules must be added before
// Setup or after Cleanup.
func (m *Model) AddModule(mod Module) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.State() {
	case StateSetup, StateActive:
		return ErrModuleAfterSetup
	}
	m.modules = append(m.modules, mod)
	return nil
}

// Own registers processors that Dispose closes.
func (m *Model) Own(d ...Disposer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owned = append(m.owned, d...)
}

// Setup binds the modules, then the behavior, moves to ACTIVE and runs an
// initial UpdateStates. On failure every binding made so far is closed, the
// modules already set up are cleaned up and the model is CLEANED_UP.
func (m *Model) Setup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setupLocked("setup")
}

// Cleanup closes every binding, then runs InCleanup and the modules'
// Cleanup. It is a no-op unless the model is SETUP or ACTIVE. After Cleanup
// returns, no binding delivers to the model.
func (m *Model) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked("cleanup")
}

// Restart is Cleanup followed by Setup. Processors keep their values until
// the new bindings deliver.
func (m *Model) Restart() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked("restart")
	return m.setupLocked("restart")
}

// Dispose cleans up and closes every owned processor's subscriptions. A
// disposed model cannot be set up again.
func (m *Model) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return
	}
	m.cleanupLocked("dispose")
	m.disposed = true
	for _, d := range m.owned {
		d.Dispose()
	}
	m.owned = nil
}

func (m *Model) setupLocked(reason string) error {
	old := m.State()
	switch {
	case m.disposed:
		return ErrDisposed
	case old == StateSetup || old == StateActive:
		return ErrAlreadySetup
	}

	m.gen++
	m.setState(old, StateSetup, reason)
	b := &Binder{model: m, gen: m.gen}
	defer b.expire()

	for i, mod := range m.modules {
		if err := mod.Setup(b); err != nil {
			m.abortLocked(i, false)
			return fmt.Errorf("module %T setup: %w", mod, err)
		}
	}
	if err := m.behavior.InSetup(b); err != nil {
		m.abortLocked(len(m.modules), true)
		return err
	}

	m.setState(StateSetup, StateActive, reason)
	m.behavior.UpdateStates()
	return nil
}

// abortLocked undoes a partial setup. n is the number of modules already
// set up.
func (m *Model) abortLocked(n int, cleanupBehavior bool) {
	m.gen++
	m.closeBindingsLocked()
	if cleanupBehavior {
		m.behavior.InCleanup()
	}
	for _, mod := range m.modules[:n] {
		mod.Cleanup()
	}
	m.setState(StateSetup, StateCleanedUp, "setup failed")
}

func (m *Model) cleanupLocked(reason string) {
	old := m.State()
	if old != StateSetup && old != StateActive {
		return
	}

	// Invalidate deliveries already queued for the old bindings.
	m.gen++
	m.closeBindingsLocked()
	m.behavior.InCleanup()
	for _, mod := range m.modules {
		mod.Cleanup()
	}
	m.setState(old, StateCleanedUp, reason)
}

func (m *Model) closeBindingsLocked() {
	for _, sub := range m.bindings {
		sub.Close()
	}
	m.bindings = nil
}

func (m *Model) setState(from, to State, reason string) {
	m.state.Store(uint32(to))
	m.debugLog("state change", "old", from, "new", to, "reason", reason, "bindings", len(m.bindings))

	if m.events == nil {
		return
	}
	m.events.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentModel,
		Category:  log.CategoryLifecycle,
		ModelID:   m.id,
		Lifecycle: &log.LifecycleEvent{
			Model:    m.name,
			OldState: from.String(),
			NewState: to.String(),
			Bindings: len(m.bindings),
			Reason:   reason,
		},
	})
}

// deliver applies a binding callback if gen is still current, then
// recomputes the derived state.
func (m *Model) deliver(gen uint64, apply func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen != gen || m.State() != StateActive {
		return
	}
	apply()
	m.behavior.UpdateStates()
}

// debugLog logs a debug message if logging is enabled.
func (m *Model) debugLog(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug("widget: "+msg, append([]any{"model", m.name, "id", m.id}, args...)...)
	}
}
