package storage

import (
	"sync"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/batching"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/planning"
)

// Storage provides access to the machine capacity used for new plans.
type Storage interface {
	GetCapacity() (batching.Width, error)
	SetCapacity(capacity batching.Width) error
}

// MemoryStorage keeps the capacity in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu       sync.RWMutex
	capacity batching.Width
}

// NewMemoryStorage initialises storage with the default capacity.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		capacity: DefaultCapacity(),
	}
}

// DefaultCapacity returns the capacity used when nothing is configured.
func DefaultCapacity() batching.Width {
	return planning.DefaultCapacity()
}

// GetCapacity returns the currently configured capacity.
func (s *MemoryStorage) GetCapacity() (batching.Width, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capacity, nil
}

// SetCapacity validates and stores the provided capacity.
func (s *MemoryStorage) SetCapacity(capacity batching.Width) error {
	if err := batching.ValidateCapacity(capacity); err != nil {
		return err
	}

	s.mu.Lock()
	s.capacity = capacity
	s.mu.Unlock()
	return nil
}
