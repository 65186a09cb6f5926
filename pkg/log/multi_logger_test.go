package log

import (
	"sync"
	"testing"
	"time"
)

// mockLogger records events for testing
type mockLogger struct {
	mu     sync.Mutex
	events []Event
}

func (m *mockLogger) Log(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func TestMultiLoggerCallsAll(t *testing.T) {
	mock1 := &mockLogger{}
	mock2 := &mockLogger{}
	mock3 := &mockLogger{}

	multi := NewMultiLogger(mock1, mock2, mock3)

	multi.Log(Event{
		Timestamp: time.Now(),
		Component: ComponentStore,
		Category:  CategoryValue,
		Key:       "Gimbal.Attitude[0]",
	})

	for i, mock := range []*mockLogger{mock1, mock2, mock3} {
		if len(mock.events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(mock.events))
			continue
		}
		if mock.events[0].Key != "Gimbal.Attitude[0]" {
			t.Errorf("logger %d: key got %q", i, mock.events[0].Key)
		}
	}
}

func TestMultiLoggerSkipsNil(t *testing.T) {
	mock := &mockLogger{}
	multi := NewMultiLogger(nil, mock, nil)

	multi.Log(Event{Timestamp: time.Now()})

	if len(mock.events) != 1 {
		t.Errorf("got %d events, want 1", len(mock.events))
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	multi := NewMultiLogger()
	// Must not panic.
	multi.Log(Event{Timestamp: time.Now()})
}
