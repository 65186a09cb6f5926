package log

import "time"

// Event represents a trace event captured by the store or a widget model.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Component that captured the event.
	Component Component `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Key is the identity string of the key involved, if any.
	Key string `cbor:"4,keyasint,omitempty"`

	// ModelID identifies the widget model instance, if any.
	ModelID string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Subscription *SubscriptionEvent `cbor:"10,keyasint,omitempty"`
	Value        *ValueEvent        `cbor:"11,keyasint,omitempty"`
	Write        *WriteEvent        `cbor:"12,keyasint,omitempty"`
	Lifecycle    *LifecycleEvent    `cbor:"13,keyasint,omitempty"`
	Error        *ErrorEventData    `cbor:"14,keyasint,omitempty"`
}

// Component indicates which part of the system captured the event.
type Component uint8

const (
	// ComponentStore is the keyed store.
	ComponentStore Component = 0
	// ComponentModel is a widget model.
	ComponentModel Component = 1
)

// String returns the component name.
func (c Component) String() string {
	switch c {
	case ComponentStore:
		return "STORE"
	case ComponentModel:
		return "MODEL"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategorySubscription indicates observer or source subscription changes.
	CategorySubscription Category = 0
	// CategoryValue indicates a value delivered for a key.
	CategoryValue Category = 1
	// CategoryWrite indicates a write request or result.
	CategoryWrite Category = 2
	// CategoryLifecycle indicates a widget model state change.
	CategoryLifecycle Category = 3
	// CategoryError indicates a source error.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategorySubscription:
		return "SUBSCRIPTION"
	case CategoryValue:
		return "VALUE"
	case CategoryWrite:
		return "WRITE"
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SubscriptionAction indicates what happened to a subscription.
type SubscriptionAction uint8

const (
	// ActionObserve indicates a new store observer.
	ActionObserve SubscriptionAction = 0
	// ActionUnobserve indicates a removed store observer.
	ActionUnobserve SubscriptionAction = 1
	// ActionSourceOpen indicates the store opened the source subscription.
	ActionSourceOpen SubscriptionAction = 2
	// ActionSourceClose indicates the store closed the source subscription.
	ActionSourceClose SubscriptionAction = 3
)

// String returns the action name.
func (a SubscriptionAction) String() string {
	switch a {
	case ActionObserve:
		return "OBSERVE"
	case ActionUnobserve:
		return "UNOBSERVE"
	case ActionSourceOpen:
		return "SOURCE_OPEN"
	case ActionSourceClose:
		return "SOURCE_CLOSE"
	default:
		return "UNKNOWN"
	}
}

// SubscriptionEvent captures observer and source subscription changes.
type SubscriptionEvent struct {
	// Action is what happened.
	Action SubscriptionAction `cbor:"1,keyasint"`

	// Observers is the observer count after the change.
	Observers int `cbor:"2,keyasint"`
}

// ValueEvent captures a value published for a key.
type ValueEvent struct {
	// Value is the new value (CBOR-compatible representation).
	Value any `cbor:"1,keyasint,omitempty"`

	// Unavailable indicates the source reported the device as absent.
	Unavailable bool `cbor:"2,keyasint,omitempty"`

	// Optimistic indicates the value came from an accepted write rather
	// than from the source.
	Optimistic bool `cbor:"3,keyasint,omitempty"`

	// Observers is the number of observers the value was queued for.
	Observers int `cbor:"4,keyasint"`
}

// WritePhase distinguishes write requests from results.
type WritePhase uint8

const (
	// WriteRequest indicates a write was issued.
	WriteRequest WritePhase = 0
	// WriteResult indicates a write completed.
	WriteResult WritePhase = 1
)

// String returns the write phase name.
func (p WritePhase) String() string {
	switch p {
	case WriteRequest:
		return "REQUEST"
	case WriteResult:
		return "RESULT"
	default:
		return "UNKNOWN"
	}
}

// WriteEvent captures a write and its outcome.
type WriteEvent struct {
	// Phase is request or result.
	Phase WritePhase `cbor:"1,keyasint"`

	// Value is the written value.
	Value any `cbor:"2,keyasint,omitempty"`

	// Policy is the key's write policy name.
	Policy string `cbor:"3,keyasint,omitempty"`

	// Error is the failure reason for a failed result.
	Error string `cbor:"4,keyasint,omitempty"`

	// Duration is the time from request to result (result only).
	Duration *time.Duration `cbor:"5,keyasint,omitempty"`
}

// LifecycleEvent captures widget model state transitions.
type LifecycleEvent struct {
	// Model is the model's type name.
	Model string `cbor:"1,keyasint,omitempty"`

	// OldState is the previous state.
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Bindings is the number of store bindings held after the transition.
	Bindings int `cbor:"4,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"5,keyasint,omitempty"`
}

// ErrorEventData captures source errors.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Terminal indicates the source stopped delivering.
	Terminal bool `cbor:"2,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
