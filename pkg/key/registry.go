package key

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry errors.
var (
	ErrUnknownParameter   = errors.New("unknown parameter")
	ErrDuplicateParameter = errors.New("conflicting parameter declaration")
	ErrTypeMismatch       = errors.New("key type mismatch")
	ErrInvalidIdentity    = errors.New("invalid key identity")
)

// Registry resolves identities to interned keys.
type Registry struct {
	mu sync.RWMutex

	// Declarations indexed by namespace, then parameter name.
	params map[string]map[string]Declaration

	// Interned keys indexed by identity.
	keys map[Identity]AnyKey
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		params: make(map[string]map[string]Declaration),
		keys:   make(map[Identity]AnyKey),
	}
}

// Register adds the declarations of a namespace. Registering the same
// declarations again is a no-op; a different declaration under an already
// registered name fails with ErrDuplicateParameter.
func (r *Registry) Register(ns Namespace) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	params := r.params[ns.Name]
	if params == nil {
		params = make(map[string]Declaration, len(ns.Params))
	}

	// Validate everything, including duplicates within ns.Params, before
	// mutating.
	added := make(map[string]Declaration, len(ns.Params))
	for _, d := range ns.Params {
		m := d.Meta()
		if m.Namespace != ns.Name {
			return fmt.Errorf("%w: %s.%s declared in namespace %s", ErrDuplicateParameter, m.Namespace, m.Name, ns.Name)
		}
		existing, ok := params[m.Name]
		if !ok {
			existing, ok = added[m.Name]
		}
		if !ok {
			added[m.Name] = d
			continue
		}
		if em := existing.Meta(); em != m && em.goType != m.goType {
			return fmt.Errorf("%w: %s.%s is %s, redeclared as %s",
				ErrDuplicateParameter, ns.Name, m.Name, em.goType, m.goType)
		}
	}

	for name, d := range added {
		params[name] = d
	}
	r.params[ns.Name] = params
	return nil
}

// MustRegister registers the namespaces and panics on conflict.
func (r *Registry) MustRegister(namespaces ...Namespace) {
	for _, ns := range namespaces {
		if err := r.Register(ns); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the interned key for the identity tuple.
func (r *Registry) Lookup(namespace, name string, index, subIndex int) (AnyKey, error) {
	return r.intern(Identity{Namespace: namespace, Name: name, Index: index, SubIndex: subIndex})
}

// LookupIdentity returns the interned key for id.
func (r *Registry) LookupIdentity(id Identity) (AnyKey, error) {
	return r.intern(id)
}

// Params returns the declarations of a namespace sorted by name.
func (r *Registry) Params(namespace string) []*Meta {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Meta, 0, len(r.params[namespace]))
	for _, d := range r.params[namespace] {
		result = append(result, d.Meta())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Namespaces returns the registered namespace names, sorted.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.params))
	for name := range r.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KeyCount returns the number of interned keys.
func (r *Registry) KeyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}

func (r *Registry) intern(id Identity) (AnyKey, error) {
	if id.Index < 0 || id.SubIndex < 0 {
		return nil, fmt.Errorf("%w: %s: negative index", ErrInvalidIdentity, id)
	}

	r.mu.RLock()
	k, ok := r.keys[id]
	r.mu.RUnlock()
	if ok {
		return k, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have interned it in the meantime.
	if k, ok := r.keys[id]; ok {
		return k, nil
	}

	params, ok := r.params[id.Namespace]
	if !ok {
		return nil, fmt.Errorf("%w: namespace %q not registered", ErrUnknownParameter, id.Namespace)
	}
	decl, ok := params[id.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownParameter, id.Namespace, id.Name)
	}

	k = decl.newKey(id)
	r.keys[id] = k
	return k, nil
}

// Of returns the interned typed key for param at (index, subIndex).
func Of[T any](r *Registry, param Param[T], index, subIndex int) (*Key[T], error) {
	k, err := r.Lookup(param.Namespace(), param.Name(), index, subIndex)
	if err != nil {
		return nil, err
	}
	typed, ok := k.(*Key[T])
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, k, k.Meta().goType)
	}
	return typed, nil
}

// Must is like Of but panics on error. Use it for keys whose namespace is
// known to be registered; a failure is a programming error.
func Must[T any](r *Registry, param Param[T], index, subIndex int) *Key[T] {
	k, err := Of(r, param, index, subIndex)
	if err != nil {
		panic(err)
	}
	return k
}
