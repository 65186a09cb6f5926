package key

import (
	"fmt"
	"reflect"
)

// Declaration is a statically declared parameter. It is implemented only by
// Param[T].
type Declaration interface {
	// Meta returns the parameter metadata.
	Meta() *Meta

	newKey(id Identity) AnyKey
}

// Param is a typed parameter declaration.
type Param[T any] struct {
	meta *Meta
}

// ParamOption customizes a declaration.
type ParamOption func(*Meta)

// Optimistic makes successful writes visible before the source confirms them.
func Optimistic() ParamOption {
	return func(m *Meta) { m.WritePolicy = WriteOptimistic }
}

// Range sets numeric bounds checked on write.
func Range(min, max any) ParamOption {
	return func(m *Meta) {
		m.MinValue = min
		m.MaxValue = max
	}
}

// Unit sets the unit of measurement.
func Unit(unit string) ParamOption {
	return func(m *Meta) { m.Unit = unit }
}

// Describe sets the human-readable description.
func Describe(description string) ParamOption {
	return func(m *Meta) { m.Description = description }
}

// WithType overrides the derived data type, e.g. DataTypeEnum for a named
// integer type.
func WithType(t DataType) ParamOption {
	return func(m *Meta) { m.Type = t }
}

// Declare declares a parameter of type T. It has no side effects; the
// parameter becomes resolvable once its Namespace is registered.
func Declare[T any](namespace, name string, access Access, opts ...ParamOption) Param[T] {
	var zero T
	m := &Meta{
		Namespace: namespace,
		Name:      name,
		Type:      dataTypeOf[T](),
		Access:    access,
		goType:    fmt.Sprintf("%T", zero),
		rtype:     reflect.TypeOf((*T)(nil)).Elem(),
		accept: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return Param[T]{meta: m}
}

// Meta returns the parameter metadata.
func (p Param[T]) Meta() *Meta {
	return p.meta
}

// Namespace returns the owning namespace name.
func (p Param[T]) Namespace() string {
	return p.meta.Namespace
}

// Name returns the parameter name.
func (p Param[T]) Name() string {
	return p.meta.Name
}

func (p Param[T]) newKey(id Identity) AnyKey {
	return &Key[T]{id: id, meta: p.meta}
}

// Namespace groups the declarations owned by one component.
type Namespace struct {
	Name   string
	Params []Declaration
}
