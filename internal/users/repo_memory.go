package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]User
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]User)}
}

// Upsert stores or refreshes a user keyed by id.
func (r *MemoryRepo) Upsert(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := r.data[user.ID]; ok {
		existing.Email = user.Email
		existing.FullName = user.FullName
		existing.UpdatedAt = now
		r.data[user.ID] = existing
		return nil
	}
	if user.Role == "" {
		user.Role = RoleStudent
	}
	if user.InstructorStatus == "" {
		user.InstructorStatus = InstructorStatusNone
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.data[user.ID] = user
	return nil
}

// GetByID returns a user by id.
func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.data[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// SetRole updates the role and instructor status.
func (r *MemoryRepo) SetRole(ctx context.Context, userID, role, instructorStatus string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.data[userID]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	u.InstructorStatus = instructorStatus
	u.UpdatedAt = time.Now().UTC()
	r.data[userID] = u
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
