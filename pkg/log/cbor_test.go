package log

import (
	"bytes"
	"testing"
	"time"
)

func TestEncodeDecodeValueEvent(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 891011, time.UTC)
	event := Event{
		Timestamp: ts,
		Component: ComponentStore,
		Category:  CategoryValue,
		Key:       "Battery.ChargeRemaining[0]",
		Value: &ValueEvent{
			Value:      "full",
			Optimistic: true,
			Observers:  4,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, ts)
	}
	if decoded.Value == nil {
		t.Fatal("Value is nil")
	}
	if decoded.Value.Value != "full" {
		t.Errorf("Value: got %v, want full", decoded.Value.Value)
	}
	if !decoded.Value.Optimistic {
		t.Error("Optimistic lost")
	}
	if decoded.Value.Observers != 4 {
		t.Errorf("Observers: got %d, want 4", decoded.Value.Observers)
	}
	if decoded.Write != nil || decoded.Lifecycle != nil {
		t.Error("unexpected payloads decoded")
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	event := Event{
		Timestamp: time.Unix(0, 42).UTC(),
		Category:  CategoryLifecycle,
		ModelID:   "m",
		Lifecycle: &LifecycleEvent{NewState: "ACTIVE", Bindings: 1},
	}

	a, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	b, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("encoding is not deterministic")
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0x00}); err == nil {
		t.Error("expected error for invalid CBOR")
	}
}

func TestStreamEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for i := 0; i < 3; i++ {
		if err := enc.Encode(Event{Timestamp: time.Now(), Key: "k", Subscription: &SubscriptionEvent{Observers: i}}); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
	}

	dec := NewDecoder(&buf)
	for i := 0; i < 3; i++ {
		var e Event
		if err := dec.Decode(&e); err != nil {
			t.Fatalf("Decode %d failed: %v", i, err)
		}
		if e.Subscription == nil || e.Subscription.Observers != i {
			t.Errorf("event %d: got %+v", i, e.Subscription)
		}
	}
}
