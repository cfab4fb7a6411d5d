package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is the in-memory Repo used when DATABASE_URL is unset and in
// tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Document)}
}

func (r *MemoryRepo) Create(_ context.Context, doc Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	r.byID[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, documentID string) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byID[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) Update(_ context.Context, doc Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[doc.ID]
	if !ok {
		return ErrNotFound
	}
	stored.VerificationStatus = doc.VerificationStatus
	stored.ReviewerID = doc.ReviewerID
	stored.ReviewNotes = doc.ReviewNotes
	stored.ReviewedAt = doc.ReviewedAt
	r.byID[doc.ID] = stored
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[documentID]; !ok {
		return ErrNotFound
	}
	delete(r.byID, documentID)
	return nil
}

func (r *MemoryRepo) ListByApplication(_ context.Context, applicationID string) ([]Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Document
	for _, doc := range r.byID {
		if doc.ApplicationID == applicationID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) CountByApplication(_ context.Context, applicationID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, doc := range r.byID {
		if doc.ApplicationID == applicationID {
			count++
		}
	}
	return count, nil
}

var _ Repo = (*MemoryRepo)(nil)
