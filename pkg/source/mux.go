package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/aerolens/uxsdk-go/pkg/key"
)

// Mux routes keys to sources by namespace, e.g. device keys to the SDK and
// user preference keys to a preferences file.
type Mux struct {
	mu       sync.RWMutex
	routes   map[string]Source
	fallback Source
}

// NewMux creates a router. fallback serves unrouted namespaces and may be nil.
func NewMux(fallback Source) *Mux {
	return &Mux{
		routes:   make(map[string]Source),
		fallback: fallback,
	}
}

// Route assigns a source to a namespace, replacing any previous route.
func (m *Mux) Route(namespace string, src Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[namespace] = src
}

func (m *Mux) lookup(k key.AnyKey) (Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ns := k.Identity().Namespace
	if src, ok := m.routes[ns]; ok {
		return src, nil
	}
	if m.fallback != nil {
		return m.fallback, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoRoute, ns)
}

// Read implements Source.
func (m *Mux) Read(k key.AnyKey) (any, bool) {
	src, err := m.lookup(k)
	if err != nil {
		return nil, false
	}
	return src.Read(k)
}

// Observe implements Source.
func (m *Mux) Observe(k key.AnyKey, sink Sink) (func(), error) {
	src, err := m.lookup(k)
	if err != nil {
		return nil, err
	}
	return src.Observe(k, sink)
}

// Write implements Source.
func (m *Mux) Write(ctx context.Context, k key.AnyKey, value any) error {
	src, err := m.lookup(k)
	if err != nil {
		return err
	}
	return src.Write(ctx, k, value)
}

// Compile-time interface satisfaction check.
var _ Source = (*Mux)(nil)
