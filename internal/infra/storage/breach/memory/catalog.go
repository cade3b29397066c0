package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/ahrav/breachcheck/internal/domain/breach"
)

var _ breach.CatalogStore = (*CatalogStore)(nil)

// CatalogStore is an in-memory breach catalog for single-instance deployments
// and tests.
type CatalogStore struct {
	mu      sync.RWMutex
	entries map[string]breach.CatalogEntry // Keyed by breach name
}

// NewCatalogStore creates an empty in-memory catalog.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{entries: make(map[string]breach.CatalogEntry)}
}

// Get returns the entry stored under name or breach.ErrNotFound.
func (s *CatalogStore) Get(_ context.Context, name string) (breach.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		return breach.CatalogEntry{}, breach.ErrNotFound
	}
	return clone(e), nil
}

// Upsert stores entries, replacing any existing entry with the same name.
func (s *CatalogStore) Upsert(_ context.Context, entries ...breach.CatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.entries[e.Breach.Name] = clone(e)
	}
	return nil
}

// Len returns the number of cached breaches.
func (s *CatalogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func clone(e breach.CatalogEntry) breach.CatalogEntry {
	e.Breach.DataClasses = slices.Clone(e.Breach.DataClasses)
	return e
}
