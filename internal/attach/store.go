package attach

import (
	"fmt"
	"sync"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/google/uuid"
)

// Store is an in-memory preview store. Allocated files are served by the
// dashboard at /api/previews/{id} until released. Data is lost on restart,
// which matches the session-scoped lifetime of previews.
type Store struct {
	mu    sync.RWMutex
	files map[string]domain.Attachment
}

// NewStore creates an empty preview store.
func NewStore() *Store {
	return &Store{files: make(map[string]domain.Attachment)}
}

// Allocate implements PreviewAllocator.
func (s *Store) Allocate(file domain.Attachment) (string, error) {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = file

	return id, nil
}

// Release implements PreviewAllocator. Releasing an unknown handle is an
// error so that double releases surface during development.
func (s *Store) Release(handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[handle]; !ok {
		return fmt.Errorf("preview not found: %s", handle)
	}
	delete(s.files, handle)
	return nil
}

// Get returns the file bound to a live handle.
func (s *Store) Get(handle string) (domain.Attachment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.files[handle]
	return file, ok
}

// Len reports how many previews are live.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
