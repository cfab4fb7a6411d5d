package aiverify

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is the in-memory Repo used when DATABASE_URL is unset and in
// tests.
type MemoryRepo struct {
	mu    sync.Mutex
	byID  map[string]Verification
	byApp map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:  make(map[string]Verification),
		byApp: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(_ context.Context, v Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byApp[v.ApplicationID]; exists {
		return ErrConflict
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	r.byID[v.ID] = v
	r.byApp[v.ApplicationID] = v.ID
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, verificationID string) (Verification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byID[verificationID]
	if !ok {
		return Verification{}, ErrNotFound
	}
	return v, nil
}

func (r *MemoryRepo) GetByApplication(_ context.Context, applicationID string) (Verification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byApp[applicationID]
	if !ok {
		return Verification{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepo) Update(_ context.Context, v Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[v.ID]; !ok {
		return ErrNotFound
	}
	r.byID[v.ID] = v
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
