package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and single-run usage.
// Safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	workspaces map[string]Workspace
	closed     bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{workspaces: make(map[string]Workspace)}
}

// Save inserts or replaces a workspace record.
func (s *MemoryStore) Save(ctx context.Context, ws Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.workspaces[ws.ID] = ws
	return nil
}

// Load retrieves a workspace by ID.
func (s *MemoryStore) Load(ctx context.Context, id string) (Workspace, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Workspace{}, false, ErrClosed
	}
	ws, ok := s.workspaces[id]
	return ws, ok, nil
}

// Delete removes a workspace; absent IDs are a no-op.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.workspaces, id)
	return nil
}

// Close marks the store closed; later operations return ErrClosed.
func (s *MemoryStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
