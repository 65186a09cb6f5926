package key

// AnyKey is the type-erased view of a key, used by sources and the store.
type AnyKey interface {
	// Identity returns the key address.
	Identity() Identity

	// Meta returns the parameter metadata.
	Meta() *Meta

	// String returns the identity string.
	String() string
}

// Key is an interned, immutable, typed key.
type Key[T any] struct {
	id   Identity
	meta *Meta
}

// Identity returns the key address.
func (k *Key[T]) Identity() Identity {
	return k.id
}

// Meta returns the parameter metadata.
func (k *Key[T]) Meta() *Meta {
	return k.meta
}

// String returns the identity string.
func (k *Key[T]) String() string {
	return k.id.String()
}

// Cast converts an untyped value to T.
func (k *Key[T]) Cast(v any) (T, bool) {
	t, ok := v.(T)
	return t, ok
}

// Compile-time interface satisfaction check.
var _ AnyKey = (*Key[bool])(nil)
