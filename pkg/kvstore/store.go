package kvstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	pkgError "github.com/AzielCF/az-vkmacro/pkg/error"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Listener is notified with the new key order after every successful mutation.
type Listener func(keys []string)

// Store is a Mapping persisted to a single JSON file.
type Store struct {
	mu        sync.RWMutex
	path      string
	mapping   *Mapping
	listeners []Listener
}

// Load reads and validates the mapping stored at path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pkgError.ConfigLoadError{Path: path, Err: err}
	}
	m, err := ParseMapping(data)
	if err != nil {
		return nil, &pkgError.ConfigLoadError{Path: path, Err: err}
	}
	logrus.Debugf("[STORE] Loaded %d entries from %s (%s)", m.Len(), path, humanize.Bytes(uint64(len(data))))
	return &Store{path: path, mapping: m}, nil
}

// New wraps an in-memory mapping that will be persisted to path on mutation.
func New(path string, m *Mapping) *Store {
	if m == nil {
		m = NewMapping()
	}
	return &Store{path: path, mapping: m}
}

func (s *Store) Path() string {
	return s.path
}

// OnChange registers a listener. Listeners run synchronously, after the file
// has been written and before the mutating call returns.
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapping.Get(key)
}

func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapping.Keys()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapping.Len()
}

// Snapshot returns a copy of the current mapping.
func (s *Store) Snapshot() *Mapping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapping.Clone()
}

// Export renders the current mapping as pretty-printed JSON.
func (s *Store) Export() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := s.mapping.Marshal()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Replace swaps the whole mapping. The caller is expected to have built m
// with ParseMapping.
func (s *Store) Replace(m *Mapping) error {
	if m == nil {
		return pkgError.ValidationError("mapping is required")
	}
	return s.commit(func(*Mapping) (*Mapping, error) {
		return m.Clone(), nil
	})
}

func (s *Store) Set(key, value string) error {
	return s.commit(func(cur *Mapping) (*Mapping, error) {
		next := cur.Clone()
		next.Set(key, value)
		return next, nil
	})
}

// Delete removes key, returning a NotFoundError when it is absent.
func (s *Store) Delete(key string) error {
	return s.commit(func(cur *Mapping) (*Mapping, error) {
		next := cur.Clone()
		if !next.Delete(key) {
			return nil, pkgError.NotFoundError(fmt.Sprintf("key %q not found", key))
		}
		return next, nil
	})
}

// commit persists the mutated copy and only then makes it visible.
func (s *Store) commit(mutate func(cur *Mapping) (*Mapping, error)) error {
	s.mu.Lock()
	next, err := mutate(s.mapping)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	data, err := next.Marshal()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := writeFile(s.path, data); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mapping = next
	keys := next.Keys()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	logrus.Debugf("[STORE] Saved %d entries to %s (%s)", len(keys), s.path, humanize.Bytes(uint64(len(data))))
	for _, l := range listeners {
		l(keys)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp for %s: %w", path, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		return fmt.Errorf("chmod temp for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp for %s: %w", path, err)
	}
	return nil
}
