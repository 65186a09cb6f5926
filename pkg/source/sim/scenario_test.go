package sim

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/source"
)

const recordingScenario = `
name: start-recording
description: camera starts recording after twenty seconds
steps:
  - at: 20s
    key: Camera.IsRecording[0]
    value: true
  - at: 0s
    key: Camera.IsRecording[0]
    value: false
  - at: 25s
    key: Battery.ChargeRemaining[0]
    value: 42
  - at: 30s
    fail_writes: execution failed
  - at: 31s
    key: Battery.ChargeRemaining[0]
    error: link lost
    terminal: true
  - at: 40s
    disconnect: true
  - at: 45s
    connect: true
`

func TestParseScenarioSortsSteps(t *testing.T) {
	s, err := ParseScenario([]byte(recordingScenario))
	require.NoError(t, err)

	assert.Equal(t, "start-recording", s.Name)
	require.Len(t, s.Steps, 7)
	assert.Equal(t, time.Duration(0), s.Steps[0].At)
	assert.Equal(t, 20*time.Second, s.Steps[1].At)
	assert.Equal(t, 45*time.Second, s.Duration())
}

func TestParseScenarioInvalidYAML(t *testing.T) {
	_, err := ParseScenario([]byte("steps: [at: {"))
	assert.Error(t, err)
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(recordingScenario), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Len(t, s.Steps, 7)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPlayerAdvanceTo(t *testing.T) {
	reg := testRegistry(t)
	recording := key.Must(reg, paramRecording, 0, 0)
	charge := key.Must(reg, paramCharge, 0, 0)

	s, err := ParseScenario([]byte(recordingScenario))
	require.NoError(t, err)

	d := NewDevice()
	p, err := NewPlayer(d, reg, s)
	require.NoError(t, err)

	assert.Equal(t, 1, p.AdvanceTo(15*time.Second))
	v, _ := d.Read(recording)
	assert.Equal(t, false, v)

	assert.Equal(t, 2, p.AdvanceTo(25*time.Second))
	v, _ = d.Read(recording)
	assert.Equal(t, true, v)
	v, _ = d.Read(charge)
	assert.Equal(t, 42, v)

	p.AdvanceTo(30 * time.Second)
	assert.ErrorIs(t, d.Write(context.Background(), recording, false), ErrExecutionFailed)

	var rec sinkRecorder
	cancel, _ := d.Observe(charge, &rec)
	defer cancel()
	p.AdvanceTo(31 * time.Second)
	require.Len(t, rec.Errors(), 1)
	assert.True(t, source.IsTerminal(rec.Errors()[0]))

	p.AdvanceTo(40 * time.Second)
	_, ok := d.Read(charge)
	assert.False(t, ok)

	assert.False(t, p.Done())
	p.AdvanceTo(time.Minute)
	assert.True(t, p.Done())
	_, ok = d.Read(charge)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, p.Elapsed())
}

func TestNewPlayerRejectsBadSteps(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name string
		yaml string
		err  error
	}{
		{"unknown key", "steps:\n  - key: Camera.Nope[0]\n    value: 1\n", key.ErrUnknownParameter},
		{"bad identity", "steps:\n  - key: Camera\n    value: 1\n", key.ErrInvalidIdentity},
		{"wrong type", "steps:\n  - key: Camera.IsRecording[0]\n    value: maybe\n", key.ErrValueType},
		{"missing value", "steps:\n  - key: Camera.IsRecording[0]\n", ErrInvalidStep},
		{"missing key", "steps:\n  - at: 1s\n", ErrInvalidStep},
		{"value and disconnect", "steps:\n  - key: Camera.IsRecording[0]\n    value: true\n    disconnect: true\n", ErrInvalidStep},
		{"value and error", "steps:\n  - key: Camera.IsRecording[0]\n    value: true\n    error: busy\n", ErrInvalidStep},
		{"connect and fail writes", "steps:\n  - connect: true\n    fail_writes: none\n", ErrInvalidStep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseScenario([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = NewPlayer(NewDevice(), reg, s)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestPlayerRun(t *testing.T) {
	reg := testRegistry(t)
	k := key.Must(reg, paramCharge, 0, 0)

	s := &Scenario{Steps: []Step{
		{At: 0, Key: "Battery.ChargeRemaining[0]", Value: 90},
		{At: 100 * time.Millisecond, Key: "Battery.ChargeRemaining[0]", Value: 80},
	}}
	d := NewDevice()
	p, err := NewPlayer(d, reg, s)
	require.NoError(t, err)

	require.NoError(t, p.Run(context.Background(), 10))
	v, _ := d.Read(k)
	assert.Equal(t, 80, v)
}

func TestPlayerRunCancelled(t *testing.T) {
	reg := testRegistry(t)
	s := &Scenario{Steps: []Step{
		{At: time.Hour, Key: "Battery.ChargeRemaining[0]", Value: 10},
	}}
	p, err := NewPlayer(NewDevice(), reg, s)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Run(ctx, 1), context.DeadlineExceeded)
	assert.False(t, p.Done())
}
