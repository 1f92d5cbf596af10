package memory

import (
	"context"
	"slices"
	"sync"

	apperrors "github.com/MuzammilBaloch-22/Cakelora/pkg/errors"
)

// SlotStore is a process-local SlotStore. Contents are lost on restart.
type SlotStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewSlotStore creates an empty in-memory slot store.
func NewSlotStore() *SlotStore {
	return &SlotStore{values: make(map[string][]byte)}
}

func (s *SlotStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, apperrors.NotFound("slot", key)
	}
	return slices.Clone(v), nil
}

func (s *SlotStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = slices.Clone(value)
	return nil
}

func (s *SlotStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *SlotStore) Ping(context.Context) error { return nil }

func (s *SlotStore) Close() error { return nil }
