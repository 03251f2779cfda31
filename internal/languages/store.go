package languages

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// Fetcher retrieves the list of languages a translation service supports
type Fetcher interface {
	Languages(ctx context.Context) ([]pipeline.Language, error)
}

// Store owns the catalog snapshot for one process or run. The snapshot is
// fetched on first use and only replaced by an explicit Refresh; readers
// never block on each other.
type Store struct {
	fetcher  Fetcher
	snapshot atomic.Pointer[Catalog]
	mu       sync.Mutex // serializes fetches
}

// NewStore creates a store backed by fetcher
func NewStore(fetcher Fetcher) *Store {
	return &Store{fetcher: fetcher}
}

// NewStaticStore creates a store preloaded with a fixed catalog
func NewStaticStore(catalog *Catalog) *Store {
	s := &Store{}
	s.snapshot.Store(catalog)
	return s
}

// Get returns the current snapshot, fetching it if none was loaded yet
func (s *Store) Get(ctx context.Context) (*Catalog, error) {
	if c := s.snapshot.Load(); c != nil {
		return c, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.snapshot.Load(); c != nil {
		return c, nil
	}
	return s.fetchLocked(ctx)
}

// Refresh fetches a new snapshot and swaps it in. The previous snapshot stays
// in place when the fetch fails.
func (s *Store) Refresh(ctx context.Context) (*Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchLocked(ctx)
}

// Loaded reports whether a snapshot is available without fetching
func (s *Store) Loaded() bool {
	return s.snapshot.Load() != nil
}

func (s *Store) fetchLocked(ctx context.Context) (*Catalog, error) {
	if s.fetcher == nil {
		if c := s.snapshot.Load(); c != nil {
			return c, nil
		}
		return nil, fmt.Errorf("language catalog has no fetcher")
	}

	langs, err := s.fetcher.Languages(ctx)
	if err != nil {
		return nil, err
	}

	c := NewCatalog(langs)
	s.snapshot.Store(c)
	return c, nil
}
