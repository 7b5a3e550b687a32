package lease

import (
	"context"
	"sort"
	"sync"
)

// Store is the durable coordination point shared by every process in one
// bounded context. Exactly one logical container per context; adapters create
// it on first use.
type Store interface {
	// ListActiveIds returns the ids of all existing lease records, ascending.
	ListActiveIds(ctx context.Context) ([]uint32, error)

	// TryCreate atomically creates the record for id. A false result means
	// another process holds the id already; that is a benign conflict, not
	// an error.
	TryCreate(ctx context.Context, id uint32, metadata string) (bool, error)

	// Delete removes the record for id. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id uint32) error
}

// MemoryStore keeps lease records in process memory. It backs tests and
// embedded single-process deployments; it cannot coordinate across processes.
type MemoryStore struct {
	mu      sync.Mutex
	records map[uint32]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uint32]string)}
}

func (s *MemoryStore) ListActiveIds(ctx context.Context) ([]uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint32, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) TryCreate(ctx context.Context, id uint32, metadata string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; ok {
		return false, nil
	}
	s.records[id] = metadata
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}
