package widget

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/log"
	"github.com/aerolens/uxsdk-go/pkg/processor"
	"github.com/aerolens/uxsdk-go/pkg/source"
	"github.com/aerolens/uxsdk-go/pkg/source/sim"
	"github.com/aerolens/uxsdk-go/pkg/store"
)

var (
	paramRecording = key.Declare[bool]("Camera", "IsRecording", key.AccessReadOnly)
	paramMode      = key.Declare[string]("Camera", "Mode", key.AccessReadWrite)
)

type fixture struct {
	reg *key.Registry
	dev *sim.Device
	st  *store.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := key.NewRegistry()
	reg.MustRegister(key.Namespace{Name: "Camera", Params: []key.Declaration{paramRecording, paramMode}})
	dev := sim.NewDevice()
	st := store.New(dev, store.DefaultConfig())
	t.Cleanup(func() { st.Close() })
	return &fixture{reg: reg, dev: dev, st: st}
}

func (f *fixture) recording(index int) *key.Key[bool] {
	return key.Must(f.reg, paramRecording, index, 0)
}

// recordModel derives a label from the recording state of one camera.
type recordModel struct {
	Base
	reg   *key.Registry
	index int

	recording *processor.DataProcessor[bool]
	label     *processor.DataProcessor[string]

	mu      sync.Mutex
	updates int
	cleanup int
	failErr error
}

func newRecordModel(reg *key.Registry, index int) *recordModel {
	return &recordModel{
		reg:       reg,
		index:     index,
		recording: processor.New(false),
		label:     processor.New("IDLE", processor.Comparable[string]()),
	}
}

func (r *recordModel) InSetup(b *Binder) error {
	if err := Bind(b, key.Must(r.reg, paramRecording, r.index, 0), r.recording); err != nil {
		return err
	}
	return r.failErr
}

func (r *recordModel) InCleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanup++
}

func (r *recordModel) UpdateStates() {
	r.mu.Lock()
	r.updates++
	r.mu.Unlock()

	if r.recording.Value() {
		r.label.OnNext("REC")
	} else {
		r.label.OnNext("IDLE")
	}
}

func (r *recordModel) Updates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, time.Second, time.Millisecond, msg)
}

func TestLifecycleTransitions(t *testing.T) {
	f := newFixture(t)
	rm := newRecordModel(f.reg, 0)
	m := NewModel(f.st, rm)

	assert.Equal(t, StateCreated, m.State())
	assert.NotEmpty(t, m.ID())
	assert.Equal(t, "widget.recordModel", m.Name())

	// Cleanup before setup is a no-op.
	m.Cleanup()
	assert.Equal(t, StateCreated, m.State())

	require.NoError(t, m.Setup())
	assert.Equal(t, StateActive, m.State())
	assert.Equal(t, 1, m.BindingCount())
	assert.Equal(t, 1, rm.Updates(), "initial UpdateStates after setup")

	assert.ErrorIs(t, m.Setup(), ErrAlreadySetup)

	m.Cleanup()
	assert.Equal(t, StateCleanedUp, m.State())
	assert.Equal(t, 0, m.BindingCount())
	m.Cleanup()
	assert.Equal(t, 1, rm.cleanup)

	require.NoError(t, m.Setup())
	assert.Equal(t, StateActive, m.State())
	m.Cleanup()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "CREATED", StateCreated.String())
	assert.Equal(t, "SETUP", StateSetup.String())
	assert.Equal(t, "ACTIVE", StateActive.String())
	assert.Equal(t, "CLEANED_UP", StateCleanedUp.String())
	assert.Equal(t, "UNKNOWN", State(9).String())
}

func TestValuesDriveDerivedState(t *testing.T) {
	f := newFixture(t)
	rm := newRecordModel(f.reg, 0)
	m := NewModel(f.st, rm)
	require.NoError(t, m.Setup())
	defer m.Cleanup()

	f.dev.Set(f.recording(0), true)
	waitFor(t, func() bool { return rm.label.Value() == "REC" }, "label follows recording")

	f.dev.Set(f.recording(0), false)
	waitFor(t, func() bool { return rm.label.Value() == "IDLE" }, "label follows recording")
}

func TestNoDeliveryAfterCleanup(t *testing.T) {
	f := newFixture(t)
	rm := newRecordModel(f.reg, 0)
	m := NewModel(f.st, rm)
	require.NoError(t, m.Setup())

	var mu sync.Mutex
	var seen []bool
	sub := rm.recording.Subscribe(func(v bool) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, v)
	})
	defer sub.Close()

	// Flood the binding and clean up while deliveries are queued.
	for i := 0; i < 100; i++ {
		f.dev.Set(f.recording(0), i%2 == 0)
	}
	m.Cleanup()
	applied := rm.recording.Value()
	updates := rm.Updates()

	f.dev.Set(f.recording(0), !applied)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, applied, rm.recording.Value(), "processor changed after cleanup")
	assert.Equal(t, updates, rm.Updates(), "UpdateStates ran after cleanup")
	assert.Equal(t, 0, f.dev.SubscriptionCount(f.recording(0)))
}

func TestFanOutAcrossModels(t *testing.T) {
	f := newFixture(t)

	var models []*Model
	for i := 0; i < 4; i++ {
		m := NewModel(f.st, newRecordModel(f.reg, 0))
		require.NoError(t, m.Setup())
		models = append(models, m)
	}

	assert.Equal(t, 1, f.dev.SubscriptionCount(f.recording(0)))
	assert.Equal(t, 4, f.st.ObserverCount(f.recording(0)))

	for _, m := range models {
		m.Cleanup()
	}
	assert.Equal(t, 0, f.dev.SubscriptionCount(f.recording(0)))
}

func TestUpdateStatesIdempotent(t *testing.T) {
	f := newFixture(t)
	f.dev.Set(f.recording(0), true)

	rm := newRecordModel(f.reg, 0)
	m := NewModel(f.st, rm)
	require.NoError(t, m.Setup())
	defer m.Cleanup()
	waitFor(t, func() bool { return rm.label.Value() == "REC" }, "initial value")

	rm.UpdateStates()
	first := rm.label.Value()
	rm.UpdateStates()
	assert.Equal(t, first, rm.label.Value())
}

func TestScenarioC(t *testing.T) {
	f := newFixture(t)
	f.dev.Set(f.recording(0), true)
	f.dev.Set(f.recording(1), false)

	rm := newRecordModel(f.reg, 0)
	m := NewModel(f.st, rm)
	require.NoError(t, m.Setup())
	defer m.Cleanup()
	waitFor(t, func() bool { return rm.label.Value() == "REC" }, "index 0 value")

	var mu sync.Mutex
	var labels []string
	sub := rm.label.Subscribe(func(v string) {
		mu.Lock()
		defer mu.Unlock()
		labels = append(labels, v)
	})
	defer sub.Close()
	waitFor(t, func() bool { mu.Lock(); defer mu.Unlock(); return len(labels) == 1 }, "replay")

	rm.index = 1
	require.NoError(t, m.Restart())
	assert.Equal(t, StateActive, m.State())

	waitFor(t, func() bool { return rm.label.Value() == "IDLE" }, "index 1 value")
	assert.Equal(t, 0, f.dev.SubscriptionCount(f.recording(0)), "stale index 0 subscription")
	assert.Equal(t, 1, f.dev.SubscriptionCount(f.recording(1)))

	// Index 0 changes no longer reach the model.
	f.dev.Set(f.recording(0), false)
	f.dev.Set(f.recording(0), true)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "IDLE", rm.label.Value())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"REC", "IDLE"}, labels, "derived stream keeps its value until index 1 delivers")
}

type recordingModule struct {
	name  string
	calls *[]string
	err   error
}

func (r *recordingModule) Setup(*Binder) error {
	*r.calls = append(*r.calls, r.name+".setup")
	return r.err
}

func (r *recordingModule) Cleanup() {
	*r.calls = append(*r.calls, r.name+".cleanup")
}

type orderBehavior struct {
	Base
	calls *[]string
	err   error
}

func (o *orderBehavior) InSetup(*Binder) error {
	*o.calls = append(*o.calls, "model.setup")
	return o.err
}

func (o *orderBehavior) InCleanup() {
	*o.calls = append(*o.calls, "model.cleanup")
}

func TestModuleOrder(t *testing.T) {
	f := newFixture(t)
	var calls []string

	m := NewModel(f.st, &orderBehavior{calls: &calls})
	require.NoError(t, m.AddModule(&recordingModule{name: "a", calls: &calls}))
	require.NoError(t, m.AddModule(&recordingModule{name: "b", calls: &calls}))

	require.NoError(t, m.Setup())
	assert.ErrorIs(t, m.AddModule(&recordingModule{name: "c", calls: &calls}), ErrModuleAfterSetup)
	m.Cleanup()

	assert.Equal(t, []string{
		"a.setup", "b.setup", "model.setup",
		"model.cleanup", "a.cleanup", "b.cleanup",
	}, calls)
}

func TestModuleSetupFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	var calls []string
	boom := errors.New("boom")

	m := NewModel(f.st, &orderBehavior{calls: &calls})
	require.NoError(t, m.AddModule(&recordingModule{name: "a", calls: &calls}))
	require.NoError(t, m.AddModule(&recordingModule{name: "b", calls: &calls, err: boom}))
	require.NoError(t, m.AddModule(&recordingModule{name: "c", calls: &calls}))

	err := m.Setup()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateCleanedUp, m.State())
	assert.Equal(t, []string{"a.setup", "b.setup", "a.cleanup"}, calls)
}

func TestInSetupFailureClosesBindings(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")

	rm := newRecordModel(f.reg, 0)
	rm.failErr = boom
	m := NewModel(f.st, rm)

	assert.ErrorIs(t, m.Setup(), boom)
	assert.Equal(t, StateCleanedUp, m.State())
	assert.Equal(t, 0, m.BindingCount())
	assert.Equal(t, 0, f.dev.SubscriptionCount(f.recording(0)))

	rm.failErr = nil
	require.NoError(t, m.Setup())
	m.Cleanup()
}

func TestBinderExpiresAfterSetup(t *testing.T) {
	f := newFixture(t)

	var kept *Binder
	b := &funcBehavior{setup: func(b *Binder) error {
		kept = b
		return nil
	}}
	m := NewModel(f.st, b)
	require.NoError(t, m.Setup())
	defer m.Cleanup()

	err := Bind(kept, f.recording(0), processor.New(false))
	assert.ErrorIs(t, err, ErrBinderExpired)
	assert.Equal(t, 0, m.BindingCount())
}

// funcBehavior adapts a setup function to Behavior.
type funcBehavior struct {
	Base
	setup func(*Binder) error
}

func (f *funcBehavior) InSetup(b *Binder) error { return f.setup(b) }

func TestBindMapAndErrorPropagation(t *testing.T) {
	f := newFixture(t)
	k := f.recording(0)

	text := processor.New("")
	var errMu sync.Mutex
	var gotErr error
	var absent int

	m := NewModel(f.st, &funcBehavior{setup: func(b *Binder) error {
		return BindMap(b, k, text, func(v bool) string {
			if v {
				return "on"
			}
			return "off"
		}, WithOnError(func(err error) {
			errMu.Lock()
			defer errMu.Unlock()
			gotErr = err
		}), WithOnUnavailable(func() {
			errMu.Lock()
			defer errMu.Unlock()
			absent++
		}))
	}})
	require.NoError(t, m.Setup())
	defer m.Cleanup()

	f.dev.Set(k, true)
	waitFor(t, func() bool { return text.Value() == "on" }, "mapped value")

	glitch := errors.New("glitch")
	f.dev.Fail(k, glitch)
	waitFor(t, func() bool { errMu.Lock(); defer errMu.Unlock(); return gotErr != nil }, "error propagated")
	assert.ErrorIs(t, gotErr, glitch)
	assert.Equal(t, "on", text.Value(), "processor keeps last good value")

	f.dev.Disconnect()
	waitFor(t, func() bool { errMu.Lock(); defer errMu.Unlock(); return absent == 1 }, "unavailable")
}

func TestErrorsAbsorbedByDefault(t *testing.T) {
	f := newFixture(t)
	rm := newRecordModel(f.reg, 0)
	m := NewModel(f.st, rm)
	require.NoError(t, m.Setup())
	defer m.Cleanup()

	f.dev.Set(f.recording(0), true)
	waitFor(t, func() bool { return rm.label.Value() == "REC" }, "value")

	f.dev.Fail(f.recording(0), source.Terminal(errors.New("link lost")))
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, "REC", rm.label.Value())
	assert.Equal(t, StateActive, m.State())
}

func TestDispose(t *testing.T) {
	f := newFixture(t)
	rm := newRecordModel(f.reg, 0)
	m := NewModel(f.st, rm)
	m.Own(rm.recording, rm.label)
	require.NoError(t, m.Setup())

	sub := rm.label.Subscribe(func(string) {})

	m.Dispose()
	m.Dispose()

	assert.Equal(t, StateCleanedUp, m.State())
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("processor subscription not closed by Dispose")
	}
	assert.ErrorIs(t, m.Setup(), ErrDisposed)
}

func TestLifecycleTrace(t *testing.T) {
	f := newFixture(t)
	var rec traceRecorder

	m := NewModel(f.st, newRecordModel(f.reg, 0), WithEventLogger(&rec), WithName("RecordWidget"))
	require.NoError(t, m.Setup())
	require.NoError(t, m.Restart())
	m.Cleanup()

	var transitions []string
	for _, ev := range rec.Events() {
		require.NotNil(t, ev.Lifecycle)
		assert.Equal(t, log.ComponentModel, ev.Component)
		assert.Equal(t, m.ID(), ev.ModelID)
		assert.Equal(t, "RecordWidget", ev.Lifecycle.Model)
		transitions = append(transitions, ev.Lifecycle.OldState+">"+ev.Lifecycle.NewState)
	}
	assert.Equal(t, []string{
		"CREATED>SETUP", "SETUP>ACTIVE",
		"ACTIVE>CLEANED_UP", "CLEANED_UP>SETUP", "SETUP>ACTIVE",
		"ACTIVE>CLEANED_UP",
	}, transitions)
}

// Any sequence of lifecycle calls leaves the model consistent: bindings
// exist only while ACTIVE and the source is observed only while some model
// is ACTIVE.
func TestLifecycleProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		reg := key.NewRegistry()
		reg.MustRegister(key.Namespace{Name: "Camera", Params: []key.Declaration{paramRecording, paramMode}})
		dev := sim.NewDevice()
		st := store.New(dev, store.DefaultConfig())
		defer st.Close()
		k := key.Must(reg, paramRecording, 0, 0)

		m := NewModel(st, newRecordModel(reg, 0))
		ops := rapid.SliceOfN(rapid.SampledFrom([]string{"setup", "cleanup", "restart"}), 1, 20).Draw(rt, "ops")

		for _, op := range ops {
			before := m.State()
			switch op {
			case "setup":
				err := m.Setup()
				if before == StateActive && !errors.Is(err, ErrAlreadySetup) {
					rt.Fatalf("Setup on ACTIVE: err = %v", err)
				}
				if before != StateActive && err != nil {
					rt.Fatalf("Setup: %v", err)
				}
			case "cleanup":
				m.Cleanup()
			case "restart":
				if err := m.Restart(); err != nil {
					rt.Fatalf("Restart: %v", err)
				}
			}

			active := m.State() == StateActive
			wantBindings, wantSubs := 0, 0
			if active {
				wantBindings, wantSubs = 1, 1
			}
			if got := m.BindingCount(); got != wantBindings {
				rt.Fatalf("after %s: bindings = %d, want %d", op, got, wantBindings)
			}
			if got := dev.SubscriptionCount(k); got != wantSubs {
				rt.Fatalf("after %s: source subscriptions = %d, want %d", op, got, wantSubs)
			}
		}
		m.Cleanup()
	})
}

// traceRecorder collects trace events.
type traceRecorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *traceRecorder) Log(ev log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *traceRecorder) Events() []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]log.Event(nil), r.events...)
}
