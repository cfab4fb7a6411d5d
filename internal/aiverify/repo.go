package aiverify

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("verification not found")
	ErrConflict = errors.New("verification state conflict")
)

// Repo defines persistence for AI verifications.
type Repo interface {
	Create(ctx context.Context, v Verification) error
	GetByID(ctx context.Context, verificationID string) (Verification, error)
	GetByApplication(ctx context.Context, applicationID string) (Verification, error)
	Update(ctx context.Context, v Verification) error
}
