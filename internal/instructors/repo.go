package instructors

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("instructor profile not found")

// Repo defines persistence for instructor profiles.
type Repo interface {
	Upsert(ctx context.Context, profile Profile) error
	GetByUser(ctx context.Context, userID string) (Profile, error)
}
