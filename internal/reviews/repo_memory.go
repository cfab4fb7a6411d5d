package reviews

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	current map[string]ManualReview // applicationId -> current review
	events  map[string][]Event      // applicationId -> audit log
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		current: make(map[string]ManualReview),
		events:  make(map[string][]Event),
	}
}

// Upsert stores or replaces the current review for an application.
func (r *MemoryRepo) Upsert(ctx context.Context, review ManualReview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := r.current[review.ApplicationID]; ok {
		review.CreatedAt = existing.CreatedAt
	} else if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}
	review.UpdatedAt = now
	r.current[review.ApplicationID] = review
	return nil
}

// GetByApplication returns the current review for an application.
func (r *MemoryRepo) GetByApplication(ctx context.Context, applicationID string) (ManualReview, error) {
	if err := ctx.Err(); err != nil {
		return ManualReview{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.current[applicationID]
	if !ok {
		return ManualReview{}, ErrNotFound
	}
	return review, nil
}

// Delete removes the current review; the event log is untouched.
func (r *MemoryRepo) Delete(ctx context.Context, applicationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.current, applicationID)
	return nil
}

// AppendEvent records one audit event.
func (r *MemoryRepo) AppendEvent(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	r.events[event.ApplicationID] = append(r.events[event.ApplicationID], event)
	return nil
}

// ListEvents returns the audit history, oldest first.
func (r *MemoryRepo) ListEvents(ctx context.Context, applicationID string) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	evs := r.events[applicationID]
	out := make([]Event, len(evs))
	copy(out, evs)
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
