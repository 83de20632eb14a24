package blob

import (
	"context"
	"strings"
	"sync"
)

type memoryObject struct {
	data    []byte
	version uint64
}

// MemoryStore is an in-process Store. Tests use it directly; it also serves
// single-node deployments that do not need durability.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
	}
}

func (s *MemoryStore) Get(ctx context.Context, name string) ([]byte, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[name]
	if !ok {
		return nil, 0, ErrNotFound
	}

	return append([]byte(nil), obj.data...), obj.version, nil
}

func (s *MemoryStore) Put(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj := s.objects[name]
	s.objects[name] = memoryObject{
		data:    append([]byte(nil), data...),
		version: obj.version + 1,
	}

	return nil
}

func (s *MemoryStore) CompareAndPut(ctx context.Context, name string, data []byte, ifVersion uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj := s.objects[name]
	if obj.version != ifVersion {
		return 0, ErrVersionMismatch
	}

	next := obj.version + 1
	s.objects[name] = memoryObject{
		data:    append([]byte(nil), data...),
		version: next,
	}

	return next, nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, name)

	return nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string
	for name := range s.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}

	return names, nil
}
