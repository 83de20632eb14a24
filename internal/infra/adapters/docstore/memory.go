package docstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store with the same per-field LWW behavior
// as the redis adapter. Tests use it to exercise concurrent initializers.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]string),
	}
}

func (s *MemoryStore) Fields(ctx context.Context, roomID string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := make(map[string]struct{}, len(s.docs[roomID]))
	for field := range s.docs[roomID] {
		fields[field] = struct{}{}
	}

	return fields, nil
}

func (s *MemoryStore) SetField(ctx context.Context, roomID, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[roomID]; !ok {
		s.docs[roomID] = make(map[string]string)
	}
	s.docs[roomID][field] = value

	return nil
}

func (s *MemoryStore) GetField(ctx context.Context, roomID, field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.docs[roomID][field], nil
}
