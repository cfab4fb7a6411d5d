package applications

import (
	"context"
	"database/sql"

	"instructor-backend/internal/instructors"
	"instructor-backend/internal/reviews"
	"instructor-backend/internal/users"
)

// PGDecisionStore commits decisions in a single transaction. The status
// compare-and-swap runs first; if the precondition fails nothing else
// touches the database.
type PGDecisionStore struct {
	DB *sql.DB
}

func (s *PGDecisionStore) StartReview(ctx context.Context, applicationID string, event reviews.Event) (*Application, error) {
	return s.inTx(ctx, func(tx *sql.Tx) (*Application, error) {
		app, err := TransitionTx(ctx, tx, applicationID, StatusUnderReview, StatusSubmitted)
		if err != nil {
			return nil, err
		}
		if err := reviews.AppendEventTx(ctx, tx, event); err != nil {
			return nil, err
		}
		return app, nil
	})
}

func (s *PGDecisionStore) Approve(ctx context.Context, review reviews.ManualReview, profile instructors.Profile, event reviews.Event) (*Application, error) {
	return s.inTx(ctx, func(tx *sql.Tx) (*Application, error) {
		app, err := TransitionTx(ctx, tx, review.ApplicationID, StatusApproved, StatusSubmitted, StatusUnderReview)
		if err != nil {
			return nil, err
		}
		if err := reviews.UpsertTx(ctx, tx, review); err != nil {
			return nil, err
		}
		if err := users.SetRoleTx(ctx, tx, profile.UserID, users.RoleInstructor, users.InstructorStatusApproved); err != nil {
			return nil, err
		}
		if err := instructors.UpsertTx(ctx, tx, profile); err != nil {
			return nil, err
		}
		if err := reviews.AppendEventTx(ctx, tx, event); err != nil {
			return nil, err
		}
		return app, nil
	})
}

func (s *PGDecisionStore) Decline(ctx context.Context, review reviews.ManualReview, event reviews.Event, toStatus string) (*Application, error) {
	return s.inTx(ctx, func(tx *sql.Tx) (*Application, error) {
		app, err := TransitionTx(ctx, tx, review.ApplicationID, toStatus, StatusSubmitted, StatusUnderReview)
		if err != nil {
			return nil, err
		}
		if err := reviews.UpsertTx(ctx, tx, review); err != nil {
			return nil, err
		}
		if toStatus == StatusRejected {
			if err := users.SetRoleTx(ctx, tx, app.UserID, users.RoleStudent, users.InstructorStatusRejected); err != nil {
				return nil, err
			}
		}
		if err := reviews.AppendEventTx(ctx, tx, event); err != nil {
			return nil, err
		}
		return app, nil
	})
}

func (s *PGDecisionStore) Reopen(ctx context.Context, applicationID string, event reviews.Event) (*Application, error) {
	return s.inTx(ctx, func(tx *sql.Tx) (*Application, error) {
		app, err := TransitionTx(ctx, tx, applicationID, StatusDraft, StatusRequiresMoreInfo)
		if err != nil {
			return nil, err
		}
		if err := reviews.DeleteTx(ctx, tx, applicationID); err != nil {
			return nil, err
		}
		if err := reviews.AppendEventTx(ctx, tx, event); err != nil {
			return nil, err
		}
		return app, nil
	})
}

func (s *PGDecisionStore) inTx(ctx context.Context, fn func(tx *sql.Tx) (*Application, error)) (*Application, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	app, err := fn(tx)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return app, nil
}

var _ DecisionStore = (*PGDecisionStore)(nil)
