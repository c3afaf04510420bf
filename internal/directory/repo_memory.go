package directory

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepo is an in-memory Repository for tests.
type MemoryRepo struct {
	mu         sync.RWMutex
	Users      map[string]User
	Extensions map[string]Extension
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		Users:      make(map[string]User),
		Extensions: make(map[string]Extension),
	}
}

func (r *MemoryRepo) GetUser(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.Users[id]; ok {
		return u, nil
	}
	return User{}, fmt.Errorf("user %q: %w", id, ErrNotFound)
}

func (r *MemoryRepo) GetExtension(_ context.Context, ext string) (Extension, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.Extensions[ext]; ok {
		return e, nil
	}
	return Extension{}, fmt.Errorf("extension %q: %w", ext, ErrNotFound)
}
