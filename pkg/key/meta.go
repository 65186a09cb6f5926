package key

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// Value errors.
var (
	ErrValueType       = errors.New("invalid value type for key")
	ErrValueOutOfRange = errors.New("value out of range")
)

// Meta describes a declared parameter. It is shared by every key created
// from the same declaration and must not be modified after Declare.
type Meta struct {
	// Namespace is the owning namespace name.
	Namespace string

	// Name is the parameter name within the namespace.
	Name string

	// Type is the data type of the value.
	Type DataType

	// Access defines the allowed operations.
	Access Access

	// WritePolicy decides when written values reach the cache.
	WritePolicy WritePolicy

	// MinValue is the minimum allowed value (for numeric types).
	MinValue any

	// MaxValue is the maximum allowed value (for numeric types).
	MaxValue any

	// Unit is the unit of measurement (e.g., "%", "m", "mV").
	Unit string

	// Description is a human-readable description.
	Description string

	goType string
	rtype  reflect.Type
	accept func(any) bool
}

// GoType returns the Go type name of the declared value type.
func (m *Meta) GoType() string {
	return m.goType
}

// Accepts reports whether v has the declared Go type.
func (m *Meta) Accepts(v any) bool {
	return m.accept(v)
}

// Validate checks the value against the declared type and range.
func (m *Meta) Validate(v any) error {
	if !m.accept(v) {
		return m.typeError(v)
	}
	if m.MinValue != nil || m.MaxValue != nil {
		return m.checkRange(v)
	}
	return nil
}

// Coerce converts a loosely typed value, as decoded from YAML, JSON or typed
// on a console, to the declared Go type. Values that already have the
// declared type are returned unchanged. Strings are parsed for bool and
// numeric types; named types implementing encoding.TextUnmarshaler are
// parsed with it. A number that does not survive the conversion fails with
// ErrValueOutOfRange, a fraction for an integer type with ErrValueType.
func (m *Meta) Coerce(v any) (any, error) {
	if m.accept(v) {
		return v, nil
	}
	if v == nil || m.rtype == nil {
		return nil, m.typeError(v)
	}

	out := reflect.New(m.rtype)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		WeaklyTypedInput: true,
		Result:           out.Interface(),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v); err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %v", ErrValueType, m.Namespace, m.Name, err)
	}

	in := reflect.ValueOf(v)
	if isNumber(in.Kind()) && isNumber(m.rtype.Kind()) && !lossless(in, out.Elem()) {
		if isFloat(in.Kind()) && in.Float() != math.Trunc(in.Float()) {
			return nil, m.typeError(v)
		}
		return nil, fmt.Errorf("%w: %s.%s: %v", ErrValueOutOfRange, m.Namespace, m.Name, v)
	}
	return out.Elem().Interface(), nil
}

// lossless reports whether converting out back to the type of in yields in.
func lossless(in, out reflect.Value) bool {
	switch {
	case isInt(in.Kind()) && isUint(out.Kind()) && in.Int() < 0:
		return false
	case isUint(in.Kind()) && isInt(out.Kind()) && out.Int() < 0:
		return false
	}
	return out.Convert(in.Type()).Equal(in)
}

func (m *Meta) typeError(v any) error {
	return fmt.Errorf("%w: %s.%s expects %s, got %T", ErrValueType, m.Namespace, m.Name, m.goType, v)
}

func isNumber(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || isFloat(k)
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// checkRange validates numeric range constraints.
func (m *Meta) checkRange(value any) error {
	v, ok := toFloat64(value)
	if !ok {
		return nil // Not a numeric type
	}

	if m.MinValue != nil {
		min, _ := toFloat64(m.MinValue)
		if v < min {
			return fmt.Errorf("%w: %v < %v", ErrValueOutOfRange, value, m.MinValue)
		}
	}

	if m.MaxValue != nil {
		max, _ := toFloat64(m.MaxValue)
		if v > max {
			return fmt.Errorf("%w: %v > %v", ErrValueOutOfRange, value, m.MaxValue)
		}
	}

	return nil
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
