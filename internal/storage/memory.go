package storage

import (
	"context"
	"sync"

	"github.com/cubetrack/wcifhistoryapi/internal/apperror"
)

// MemoryStore is an in-memory BlobStore used in tests. PutErr, GetErr
// and DeleteErr, when set, force the corresponding operation to fail.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	PutErr    error
	GetErr    error
	DeleteErr error
}

// NewMemoryStore creates an empty in-memory blob store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put stores payload under key
func (s *MemoryStore) Put(ctx context.Context, key string, payload []byte) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(payload))
	copy(buf, payload)
	s.blobs[key] = buf
	return nil
}

// Get returns the payload stored under key
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.blobs[key]
	if !ok {
		return nil, apperror.NotFound("blob", key)
	}
	return payload, nil
}

// Delete removes the payload under key. Absent keys are not an error.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// Len returns the number of stored blobs
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// Has reports whether a blob exists under key
func (s *MemoryStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok
}
