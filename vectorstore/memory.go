package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps collections in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
	}
}

func (s *MemoryStore) CreateCollection(ctx context.Context, name string) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}
	c := newMemoryCollection(name)
	s.collections[name] = c
	return c, nil
}

func (s *MemoryStore) GetOrCreateCollection(ctx context.Context, name string) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[name]; ok {
		return c, nil
	}
	c := newMemoryCollection(name)
	s.collections[name] = c
	return c, nil
}

func (s *MemoryStore) GetCollection(ctx context.Context, name string) (Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return c, nil
}

func (s *MemoryStore) DeleteCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	delete(s.collections, name)
	return nil
}

func (s *MemoryStore) ListCollections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) Close() error { return nil }

type memoryCollection struct {
	name    string
	mu      sync.RWMutex
	order   []string
	records map[string]Record
}

func newMemoryCollection(name string) *memoryCollection {
	return &memoryCollection{
		name:    name,
		records: make(map[string]Record),
	}
}

func (c *memoryCollection) Name() string { return c.name }

func (c *memoryCollection) Add(ctx context.Context, records ...Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("record id must not be empty")
		}
		if _, ok := c.records[rec.ID]; ok {
			return fmt.Errorf("record %s already exists in %s", rec.ID, c.name)
		}
	}
	for _, rec := range records {
		rec.Metadata = copyMetadata(rec.Metadata)
		c.records[rec.ID] = rec
		c.order = append(c.order, rec.ID)
	}
	return nil
}

func (c *memoryCollection) Get(ctx context.Context, ids ...string) ([]Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(ids) == 0 {
		ids = c.order
	}
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := c.records[id]; ok {
			rec.Metadata = copyMetadata(rec.Metadata)
			out = append(out, rec)
		}
	}
	return out, nil
}

func (c *memoryCollection) Query(ctx context.Context, embedding []float32, k int) ([]Record, error) {
	all, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	return rankRecords(all, embedding, k), nil
}

func (c *memoryCollection) Delete(ctx context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := c.records[id]; ok {
			remove[id] = true
			delete(c.records, id)
		}
	}
	if len(remove) == 0 {
		return nil
	}
	kept := c.order[:0]
	for _, id := range c.order {
		if !remove[id] {
			kept = append(kept, id)
		}
	}
	c.order = kept
	return nil
}

func (c *memoryCollection) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records), nil
}
