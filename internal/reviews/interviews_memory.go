package reviews

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryInterviewsRepo is an in-memory implementation of InterviewsRepo.
type MemoryInterviewsRepo struct {
	mu   sync.RWMutex
	data map[string]Interview // interviewId -> interview
}

// NewMemoryInterviewsRepo constructs a MemoryInterviewsRepo.
func NewMemoryInterviewsRepo() *MemoryInterviewsRepo {
	return &MemoryInterviewsRepo{data: make(map[string]Interview)}
}

// Create stores a new interview.
func (r *MemoryInterviewsRepo) Create(ctx context.Context, iv Interview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now().UTC()
	}
	iv.UpdatedAt = iv.CreatedAt
	r.data[iv.ID] = iv
	return nil
}

// GetByID returns an interview by id.
func (r *MemoryInterviewsRepo) GetByID(ctx context.Context, interviewID string) (Interview, error) {
	if err := ctx.Err(); err != nil {
		return Interview{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	iv, ok := r.data[interviewID]
	if !ok {
		return Interview{}, ErrNotFound
	}
	return iv, nil
}

// Update overwrites an existing interview.
func (r *MemoryInterviewsRepo) Update(ctx context.Context, iv Interview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[iv.ID]
	if !ok {
		return ErrNotFound
	}
	iv.CreatedAt = existing.CreatedAt
	iv.UpdatedAt = time.Now().UTC()
	r.data[iv.ID] = iv
	return nil
}

// ListByApplication returns interviews for an application, oldest first.
func (r *MemoryInterviewsRepo) ListByApplication(ctx context.Context, applicationID string) ([]Interview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Interview
	for _, iv := range r.data {
		if iv.ApplicationID == applicationID {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

var _ InterviewsRepo = (*MemoryInterviewsRepo)(nil)
