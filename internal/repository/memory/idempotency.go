package memory

import (
	"context"
	"sync"
	"time"

	"github.com/benx421/ledger/internal/models"
	"github.com/benx421/ledger/internal/repository"
)

type idempotencyEntry struct {
	key  string
	path string
}

// IdempotencyStore is a repository.IdempotencyRepository kept in memory
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[idempotencyEntry]models.IdempotencyKey
}

// NewIdempotencyStore creates an empty IdempotencyStore
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{entries: make(map[idempotencyEntry]models.IdempotencyKey)}
}

var _ repository.IdempotencyRepository = (*IdempotencyStore)(nil)

func (s *IdempotencyStore) Get(_ context.Context, key, requestPath string) (*models.IdempotencyKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[idempotencyEntry{key: key, path: requestPath}]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Store keeps the first response stored for a key and path
func (s *IdempotencyStore) Store(_ context.Context, idemKey *models.IdempotencyKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := idempotencyEntry{key: idemKey.Key, path: idemKey.RequestPath}
	if _, exists := s.entries[id]; exists {
		return nil
	}

	entry := *idemKey
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.entries[id] = entry
	return nil
}
