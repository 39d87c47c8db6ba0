package memstore

import (
	"context"
	"strings"
	"sync"
)

type mapping struct {
	owner    string
	pattern  string // lower case
	category string
}

// Store keeps category mappings in memory. Later mappings win ties.
type Store struct {
	mu       sync.RWMutex
	mappings []mapping
}

func New() *Store {
	return &Store{}
}

func (s *Store) FindCategory(_ context.Context, ownerID, description string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	description = strings.ToLower(description)

	var best *mapping

	for i := range s.mappings {
		m := &s.mappings[i]
		if m.owner != ownerID || !strings.Contains(description, m.pattern) {
			continue
		}

		if best == nil || len(m.pattern) >= len(best.pattern) {
			best = m
		}
	}

	if best == nil {
		return "", nil
	}

	return best.category, nil
}

func (s *Store) CreateMapping(_ context.Context, ownerID, pattern, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mappings = append(s.mappings, mapping{
		owner:    ownerID,
		pattern:  strings.ToLower(pattern),
		category: category,
	})

	return nil
}
