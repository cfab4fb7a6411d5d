package applications

import (
	"context"
	"time"
)

// ListFilter narrows the admin listing. Zero values mean "no constraint".
type ListFilter struct {
	Status   string
	Search   string
	From     *time.Time
	To       *time.Time
	MinScore int
	Limit    int
	Offset   int
}

// Stats is the read-only admin aggregation. All counters are zero on an
// empty dataset.
type Stats struct {
	Total              int            `json:"total"`
	ByStatus           map[string]int `json:"byStatus"`
	CreatedLast7Days   int            `json:"createdLast7Days"`
	CreatedLast30Days  int            `json:"createdLast30Days"`
	AverageReviewHours float64        `json:"averageReviewHours"`
}

// Repo defines persistence for applications. Status-changing writes are
// conditional on the expected prior status so concurrent admins cannot step
// on each other; a failed precondition surfaces as ErrConflict.
type Repo interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, applicationID string) (*Application, error)
	GetByUser(ctx context.Context, userID string) (*Application, error)
	// UpdateDraft persists the intake sections and derived fields, but only
	// while the row is still in DRAFT.
	UpdateDraft(ctx context.Context, app *Application) error
	// Transition moves status from one of fromStatuses to toStatus. Zero rows
	// updated means the precondition no longer holds.
	Transition(ctx context.Context, applicationID, toStatus string, fromStatuses ...string) (*Application, error)
	// Submit stamps submittedAt together with the DRAFT -> SUBMITTED move.
	Submit(ctx context.Context, app *Application) error
	SoftDelete(ctx context.Context, applicationID string) error
	List(ctx context.Context, filter ListFilter) ([]*Application, int, error)
	Stats(ctx context.Context) (Stats, error)
}
