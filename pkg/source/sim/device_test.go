package sim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/source"
)

var (
	paramRecording = key.Declare[bool]("Camera", "IsRecording", key.AccessReadWrite)
	paramCharge    = key.Declare[int]("Battery", "ChargeRemaining", key.AccessReadOnly, key.Range(0, 100))
)

func testRegistry(t *testing.T) *key.Registry {
	t.Helper()
	reg := key.NewRegistry()
	reg.MustRegister(
		key.Namespace{Name: "Camera", Params: []key.Declaration{paramRecording}},
		key.Namespace{Name: "Battery", Params: []key.Declaration{paramCharge}},
	)
	return reg
}

// sinkRecorder records deliveries in order.
type sinkRecorder struct {
	mu     sync.Mutex
	values []any
	errs   []error
}

func (r *sinkRecorder) OnValue(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *sinkRecorder) OnError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *sinkRecorder) Values() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.values...)
}

func (r *sinkRecorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func TestObserveDeliversCurrentValue(t *testing.T) {
	reg := testRegistry(t)
	k := key.Must(reg, paramRecording, 0, 0)

	d := NewDevice()
	d.Set(k, true)

	var rec sinkRecorder
	cancel, err := d.Observe(k, &rec)
	require.NoError(t, err)
	defer cancel()

	assert.Equal(t, []any{true}, rec.Values())
	assert.Equal(t, 1, d.SubscriptionCount(k))
	assert.Equal(t, 1, d.OpenCount(k))
}

func TestSetDeliversInOrder(t *testing.T) {
	reg := testRegistry(t)
	k := key.Must(reg, paramCharge, 0, 0)

	d := NewDevice()
	var rec sinkRecorder
	cancel, err := d.Observe(k, &rec)
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < 10; i++ {
		d.Set(k, i*10)
	}

	got := rec.Values()
	require.Len(t, got, 10)
	for i, v := range got {
		if v != i*10 {
			t.Errorf("values[%d] = %v, want %d", i, v, i*10)
		}
	}
}

func TestCancelRemovesObserver(t *testing.T) {
	reg := testRegistry(t)
	k := key.Must(reg, paramCharge, 0, 0)

	d := NewDevice()
	var rec sinkRecorder
	cancel, err := d.Observe(k, &rec)
	require.NoError(t, err)

	cancel()
	cancel()
	d.Set(k, 50)

	assert.Empty(t, rec.Values())
	assert.Equal(t, 0, d.SubscriptionCount(k))
	assert.Equal(t, 1, d.OpenCount(k))
}

func TestIndicesAreIndependent(t *testing.T) {
	reg := testRegistry(t)
	k0 := key.Must(reg, paramRecording, 0, 0)
	k1 := key.Must(reg, paramRecording, 1, 0)

	d := NewDevice()
	var rec0, rec1 sinkRecorder
	c0, _ := d.Observe(k0, &rec0)
	defer c0()
	c1, _ := d.Observe(k1, &rec1)
	defer c1()

	d.Set(k1, true)

	assert.Empty(t, rec0.Values())
	assert.Equal(t, []any{true}, rec1.Values())
}

func TestWriteEchoesValue(t *testing.T) {
	reg := testRegistry(t)
	k := key.Must(reg, paramRecording, 0, 0)

	d := NewDevice()
	var rec sinkRecorder
	cancel, _ := d.Observe(k, &rec)
	defer cancel()

	require.NoError(t, d.Write(context.Background(), k, true))

	assert.Equal(t, []any{true}, rec.Values())
	v, ok := d.Read(k)
	assert.True(t, ok)
	assert.Equal(t, true, v)

	writes := d.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, k.Identity(), writes[0].Key)
	assert.NoError(t, writes[0].Err)
}

func TestWriteWithoutEcho(t *testing.T) {
	reg := testRegistry(t)
	k := key.Must(reg, paramRecording, 0, 0)

	d := NewDevice(WithoutWriteEcho())
	var rec sinkRecorder
	cancel, _ := d.Observe(k, &rec)
	defer cancel()

	require.NoError(t, d.Write(context.Background(), k, true))

	assert.Empty(t, rec.Values())
	v, _ := d.Read(k)
	assert.Equal(t, true, v)
}

func TestFailWrites(t *testing.T) {
	reg := testRegistry(t)
	k := key.Must(reg, paramRecording, 0, 0)

	d := NewDevice()
	d.Set(k, false)
	d.FailWrites(ErrExecutionFailed)

	err := d.Write(context.Background(), k, true)
	assert.ErrorIs(t, err, ErrExecutionFailed)

	v, _ := d.Read(k)
	assert.Equal(t, false, v, "failed write must not change the value")

	d.FailWrites(nil)
	assert.NoError(t, d.Write(context.Background(), k, true))
}

func TestWriteValidatesValue(t *testing.T) {
	reg := testRegistry(t)
	charge := key.Must(reg, paramCharge, 0, 0)

	d := NewDevice()
	assert.ErrorIs(t, d.Write(context.Background(), charge, "full"), key.ErrValueType)
	assert.ErrorIs(t, d.Write(context.Background(), charge, 101), key.ErrValueOutOfRange)
}

func TestWriteLatencyHonorsContext(t *testing.T) {
	reg := testRegistry(t)
	k := key.Must(reg, paramRecording, 0, 0)

	d := NewDevice(WithWriteLatency(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := d.Write(ctx, k, true)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, d.Writes())
}

func TestFailTerminalDropsObservers(t *testing.T) {
	reg := testRegistry(t)
	k := key.Must(reg, paramCharge, 0, 0)

	d := NewDevice()
	var rec sinkRecorder
	cancel, _ := d.Observe(k, &rec)
	defer cancel()

	d.Fail(k, errors.New("glitch"))
	assert.Equal(t, 1, d.SubscriptionCount(k))

	d.Fail(k, source.Terminal(errors.New("link lost")))
	assert.Equal(t, 0, d.SubscriptionCount(k))

	errs := rec.Errors()
	require.Len(t, errs, 2)
	assert.False(t, source.IsTerminal(errs[0]))
	assert.True(t, source.IsTerminal(errs[1]))
}

func TestDisconnectAndConnect(t *testing.T) {
	reg := testRegistry(t)
	k := key.Must(reg, paramCharge, 0, 0)

	d := NewDevice()
	d.Set(k, 80)

	var rec sinkRecorder
	cancel, _ := d.Observe(k, &rec)
	defer cancel()

	d.Disconnect()
	d.Disconnect()
	errs := rec.Errors()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], source.ErrUnavailable)

	_, ok := d.Read(k)
	assert.False(t, ok)
	assert.ErrorIs(t, d.Write(context.Background(), k, 10), ErrNotConnected)

	// Changes while disconnected are kept but not delivered.
	d.Set(k, 70)
	assert.Equal(t, []any{80}, rec.Values())

	d.Connect()
	assert.Equal(t, []any{80, 70}, rec.Values())
}

func TestObserveWhileDisconnected(t *testing.T) {
	reg := testRegistry(t)
	k := key.Must(reg, paramCharge, 0, 0)

	d := NewDevice()
	d.Disconnect()

	var rec sinkRecorder
	cancel, err := d.Observe(k, &rec)
	require.NoError(t, err)
	defer cancel()

	require.Len(t, rec.Errors(), 1)
	assert.ErrorIs(t, rec.Errors()[0], source.ErrUnavailable)
}
