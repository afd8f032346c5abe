package memory

import (
	"context"
	"sort"
	"sync"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

type aliasKey struct {
	scope   domain.AliasScope
	context string
	variant string
}

// AliasStore is an in-memory implementation of storage.AliasStore.
type AliasStore struct {
	mu   sync.RWMutex
	data map[aliasKey]*domain.NameAlias
}

// NewAliasStore creates a new in-memory alias store.
func NewAliasStore() *AliasStore {
	return &AliasStore{
		data: make(map[aliasKey]*domain.NameAlias),
	}
}

// Insert adds an alias. Returns ErrDuplicateKey if (scope, context, source_variant) exists.
func (s *AliasStore) Insert(_ context.Context, a *domain.NameAlias) error {
	if a == nil || !a.Scope.IsValid() || a.CanonicalName == "" || a.SourceVariant == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := aliasKey{scope: a.Scope, context: a.Context, variant: a.SourceVariant}
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}
	aliasCopy := *a
	s.data[key] = &aliasCopy
	return nil
}

// ListAll retrieves every alias, ordered by scope, context, source_variant.
func (s *AliasStore) ListAll(_ context.Context) ([]*domain.NameAlias, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.NameAlias, 0, len(s.data))
	for _, a := range s.data {
		aliasCopy := *a
		result = append(result, &aliasCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Scope != result[j].Scope {
			return result[i].Scope < result[j].Scope
		}
		if result[i].Context != result[j].Context {
			return result[i].Context < result[j].Context
		}
		return result[i].SourceVariant < result[j].SourceVariant
	})
	return result, nil
}

var _ storage.AliasStore = (*AliasStore)(nil)
