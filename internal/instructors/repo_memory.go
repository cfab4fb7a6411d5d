package instructors

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Profile // userId -> profile
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Profile)}
}

// Upsert creates or refreshes the profile for a user, preserving performance
// counters on update.
func (r *MemoryRepo) Upsert(ctx context.Context, profile Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := r.data[profile.UserID]; ok {
		profile.TotalStudents = existing.TotalStudents
		profile.TotalCourses = existing.TotalCourses
		profile.AverageRating = existing.AverageRating
		profile.RatingsCount = existing.RatingsCount
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.TotalStudents = 0
		profile.TotalCourses = 0
		profile.AverageRating = 0
		profile.RatingsCount = 0
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	r.data[profile.UserID] = profile
	return nil
}

// GetByUser returns the profile for a user.
func (r *MemoryRepo) GetByUser(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

// Count returns the number of stored profiles.
func (r *MemoryRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

var _ Repo = (*MemoryRepo)(nil)
