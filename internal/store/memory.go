package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/liftedinit/roadchain/internal/models"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.Record
}

func NewMemoryStore(records ...models.Record) *MemoryStore {
	return &MemoryStore{records: slices.Clone(records)}
}

func (s *MemoryStore) Load(_ context.Context) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records), nil
}

func (s *MemoryStore) Append(_ context.Context, record models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.Index != uint64(len(s.records)) {
		return fmt.Errorf("%w: index %d, stored %d", ErrOutOfOrder, record.Index, len(s.records))
	}
	s.records = append(s.records, record)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
