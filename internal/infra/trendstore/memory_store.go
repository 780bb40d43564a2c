package trendstore

import (
	"context"
	"sort"
	"sync"

	"github.com/agriconnect/agriconnect/internal/domain/community"
)

// MemoryStore is an in-memory trend store for tests and dev.
type MemoryStore struct {
	mu     sync.RWMutex
	counts map[string]int64
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[string]int64)}
}

// RecordSearch bumps the counter for a search term.
func (s *MemoryStore) RecordSearch(_ context.Context, term string) error {
	if term == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[term]++
	return nil
}

// Trending returns the most frequent search terms.
func (s *MemoryStore) Trending(_ context.Context, limit int) ([]community.TrendingSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = len(s.counts)
	}
	items := make([]community.TrendingSearch, 0, len(s.counts))
	for term, count := range s.counts {
		items = append(items, community.TrendingSearch{Term: term, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Term < items[j].Term
		}
		return items[i].Count > items[j].Count
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

var _ community.TrendStore = (*MemoryStore)(nil)
