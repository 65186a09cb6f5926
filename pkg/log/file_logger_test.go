package log

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.uxlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestFileLoggerWritesCBOR(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.uxlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	event := Event{
		Timestamp: time.Now(),
		Component: ComponentStore,
		Category:  CategorySubscription,
		Key:       "Camera.Mode[0]",
		Subscription: &SubscriptionEvent{
			Action:    ActionSourceOpen,
			Observers: 2,
		},
	}

	logger.Log(event)
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("log file is empty")
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}

	if decoded.Key != event.Key {
		t.Errorf("Key: got %q, want %q", decoded.Key, event.Key)
	}
	if decoded.Subscription == nil {
		t.Fatal("Subscription is nil")
	}
	if decoded.Subscription.Action != ActionSourceOpen {
		t.Errorf("Action: got %v, want %v", decoded.Subscription.Action, ActionSourceOpen)
	}
	if decoded.Subscription.Observers != 2 {
		t.Errorf("Observers: got %d, want 2", decoded.Subscription.Observers)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.uxlog")

	for _, k := range []string{"Battery.ChargeRemaining[0]", "Battery.ChargeRemaining[1]"} {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(Event{Timestamp: time.Now(), Category: CategoryValue, Key: k})
		logger.Close()
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[1].Key != "Battery.ChargeRemaining[1]" {
		t.Errorf("second event key: got %q", events[1].Key)
	}
}

func TestFileLoggerConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.uxlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	const goroutines = 10
	const perGoroutine = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				logger.Log(Event{
					Timestamp: time.Now(),
					Category:  CategoryValue,
					Value:     &ValueEvent{Value: "x", Observers: i},
				})
			}
		}()
	}
	wg.Wait()

	written, dropped := logger.Stats()
	if written != goroutines*perGoroutine {
		t.Errorf("written: got %d, want %d", written, goroutines*perGoroutine)
	}
	if dropped != 0 {
		t.Errorf("dropped: got %d, want 0", dropped)
	}
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != goroutines*perGoroutine {
		t.Errorf("got %d events, want %d", len(events), goroutines*perGoroutine)
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewFileLogger(filepath.Join(dir, "test.uxlog"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	// Logging after close is ignored.
	logger.Log(Event{Timestamp: time.Now()})
	if written, _ := logger.Stats(); written != 0 {
		t.Errorf("written after close: got %d, want 0", written)
	}
}

func TestFileLoggerInvalidPath(t *testing.T) {
	_, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "dir", "test.uxlog"))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
