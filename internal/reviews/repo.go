package reviews

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("review not found")
)

// Repo defines persistence for manual reviews and their audit events.
type Repo interface {
	Upsert(ctx context.Context, review ManualReview) error
	GetByApplication(ctx context.Context, applicationID string) (ManualReview, error)
	Delete(ctx context.Context, applicationID string) error
	AppendEvent(ctx context.Context, event Event) error
	ListEvents(ctx context.Context, applicationID string) ([]Event, error)
}

// InterviewsRepo defines persistence for interviews.
type InterviewsRepo interface {
	Create(ctx context.Context, iv Interview) error
	GetByID(ctx context.Context, interviewID string) (Interview, error)
	Update(ctx context.Context, iv Interview) error
	ListByApplication(ctx context.Context, applicationID string) ([]Interview, error)
}
