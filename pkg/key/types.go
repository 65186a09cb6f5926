package key

// Access flags for parameters.
type Access uint8

const (
	// AccessRead allows reading the current value.
	AccessRead Access = 1 << iota

	// AccessWrite allows setting the value.
	AccessWrite

	// AccessSubscribe allows observing value changes.
	AccessSubscribe

	// Common access combinations.

	// AccessReadOnly is read and subscribe.
	AccessReadOnly = AccessRead | AccessSubscribe

	// AccessReadWrite is read, write, and subscribe.
	AccessReadWrite = AccessRead | AccessWrite | AccessSubscribe

	// AccessAction is write only (a fire-and-forget device action).
	AccessAction = AccessWrite
)

// CanRead returns true if reading is allowed.
func (a Access) CanRead() bool { return a&AccessRead != 0 }

// CanWrite returns true if writing is allowed.
func (a Access) CanWrite() bool { return a&AccessWrite != 0 }

// CanSubscribe returns true if subscribing is allowed.
func (a Access) CanSubscribe() bool { return a&AccessSubscribe != 0 }

// String returns the access flags as a string.
func (a Access) String() string {
	var s string
	if a.CanRead() {
		s += "R"
	}
	if a.CanWrite() {
		s += "W"
	}
	if a.CanSubscribe() {
		s += "S"
	}
	if s == "" {
		return "-"
	}
	return s
}

// DataType describes the value type of a parameter.
type DataType uint8

const (
	DataTypeUnknown DataType = iota
	DataTypeBool
	DataTypeInt
	DataTypeUint
	DataTypeFloat
	DataTypeString
	DataTypeBytes
	DataTypeEnum
	DataTypeStruct
)

// String returns the data type name.
func (d DataType) String() string {
	names := []string{
		"unknown", "bool", "int", "uint", "float", "string", "bytes", "enum", "struct",
	}
	if int(d) < len(names) {
		return names[d]
	}
	return "unknown"
}

// WritePolicy decides when a successful write becomes the cached value.
type WritePolicy uint8

const (
	// WriteConfirmed leaves the cache untouched until the source reports
	// the new value.
	WriteConfirmed WritePolicy = iota

	// WriteOptimistic publishes the written value as soon as the source
	// accepts the write. The next observed value reconciles the cache.
	WriteOptimistic
)

// String returns the policy name.
func (p WritePolicy) String() string {
	switch p {
	case WriteConfirmed:
		return "CONFIRMED"
	case WriteOptimistic:
		return "OPTIMISTIC"
	default:
		return "UNKNOWN"
	}
}

// dataTypeOf derives the DataType of T for the basic Go types.
// Named types (enums, structs) fall back to DataTypeStruct unless the
// declaration overrides it with WithType.
func dataTypeOf[T any]() DataType {
	var zero T
	switch any(zero).(type) {
	case bool:
		return DataTypeBool
	case int, int8, int16, int32, int64:
		return DataTypeInt
	case uint, uint8, uint16, uint32, uint64:
		return DataTypeUint
	case float32, float64:
		return DataTypeFloat
	case string:
		return DataTypeString
	case []byte:
		return DataTypeBytes
	default:
		return DataTypeStruct
	}
}
