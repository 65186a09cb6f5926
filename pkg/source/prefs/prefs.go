// Package prefs provides a source for user preferences persisted to a JSON
// file.
//
// Preferences have no device behind them and no confirmation channel: a
// write is saved to disk and returns, without notifying observers. Declare
// preference keys with key.Optimistic so the store publishes written values
// itself.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/source"
)

// FileVersion is the current version of the preferences file format.
const FileVersion = 1

// File is the on-disk format.
type File struct {
	// Version is the file format version.
	Version int `json:"version"`

	// SavedAt is when the file was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Values maps key identity strings to values.
	Values map[string]any `json:"values,omitempty"`
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Source) { s.logger = l }
}

// Source serves preference keys from a JSON file. It is safe for concurrent
// use.
type Source struct {
	path   string
	reg    *key.Registry
	logger *slog.Logger

	mu        sync.Mutex
	values    map[key.Identity]any
	observers map[key.Identity]int
}

// Open loads the preferences at path. A missing file yields empty
// preferences. Entries naming unknown keys or holding values of the wrong
// type are skipped.
func Open(path string, reg *key.Registry, opts ...Option) (*Source, error) {
	s := &Source{
		path:      path,
		reg:       reg,
		values:    make(map[key.Identity]any),
		observers: make(map[key.Identity]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Source) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("preferences %s: %w", s.path, err)
	}

	for name, raw := range f.Values {
		id, err := key.ParseIdentity(name)
		if err != nil {
			s.debugLog("skipping entry", "key", name, "error", err)
			continue
		}
		k, err := s.reg.LookupIdentity(id)
		if err != nil {
			s.debugLog("skipping entry", "key", name, "error", err)
			continue
		}
		v, err := k.Meta().Coerce(raw)
		if err != nil {
			s.debugLog("skipping entry", "key", name, "error", err)
			continue
		}
		s.values[id] = v
	}
	return nil
}

// saveLocked writes all values to disk. The caller holds s.mu.
func (s *Source) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	f := File{
		Version: FileVersion,
		SavedAt: time.Now(),
		Values:  make(map[string]any, len(s.values)),
	}
	for id, v := range s.values {
		f.Values[id.String()] = v
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	// Write to a temporary file first so a crash never leaves a truncated
	// preferences file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Read implements source.Source.
func (s *Source) Read(k key.AnyKey) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[k.Identity()]
	return v, ok
}

// Observe implements source.Source. The stored value, if any, is delivered
// before Observe returns.
func (s *Source) Observe(k key.AnyKey, sink source.Sink) (func(), error) {
	id := k.Identity()

	s.mu.Lock()
	s.observers[id]++
	v, ok := s.values[id]
	s.mu.Unlock()

	if ok {
		sink.OnValue(v)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.observers[id]--; s.observers[id] <= 0 {
				delete(s.observers, id)
			}
		})
	}, nil
}

// Write implements source.Source. The value is saved before Write returns.
func (s *Source) Write(ctx context.Context, k key.AnyKey, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := k.Meta().Validate(value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := k.Identity()
	old, had := s.values[id]
	s.values[id] = value
	if err := s.saveLocked(); err != nil {
		if had {
			s.values[id] = old
		} else {
			delete(s.values, id)
		}
		return err
	}
	s.debugLog("saved", "key", id.String(), "value", value)
	return nil
}

// Clear removes every preference and the file.
func (s *Source) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[key.Identity]any)
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Keys returns the identities of the stored preferences, sorted.
func (s *Source) Keys() []key.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]key.Identity, 0, len(s.values))
	for id := range s.values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// ObserverCount returns the number of live observations of k.
func (s *Source) ObserverCount(k key.AnyKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observers[k.Identity()]
}

// debugLog logs a debug message if logging is enabled.
func (s *Source) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug("prefs: "+msg, args...)
	}
}

// Compile-time interface satisfaction check.
var _ source.Source = (*Source)(nil)
