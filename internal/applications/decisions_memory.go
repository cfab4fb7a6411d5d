package applications

import (
	"context"
	"sync"

	"instructor-backend/internal/instructors"
	"instructor-backend/internal/reviews"
	"instructor-backend/internal/users"
)

// MemoryDecisionStore composes the in-memory repos under one mutex so a
// decision still applies all-or-mostly under concurrent admins. True rollback
// is not simulated; the lock keeps decisions serialized, which is enough for
// dev mode and tests.
type MemoryDecisionStore struct {
	mu          sync.Mutex
	Apps        *MemoryRepo
	Reviews     reviews.Repo
	Users       users.Repo
	Instructors instructors.Repo
}

func (s *MemoryDecisionStore) StartReview(ctx context.Context, applicationID string, event reviews.Event) (*Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, err := s.Apps.Transition(ctx, applicationID, StatusUnderReview, StatusSubmitted)
	if err != nil {
		return nil, err
	}
	if err := s.Reviews.AppendEvent(ctx, event); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *MemoryDecisionStore) Approve(ctx context.Context, review reviews.ManualReview, profile instructors.Profile, event reviews.Event) (*Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, err := s.Apps.Transition(ctx, review.ApplicationID, StatusApproved, StatusSubmitted, StatusUnderReview)
	if err != nil {
		return nil, err
	}
	if err := s.Reviews.Upsert(ctx, review); err != nil {
		return nil, err
	}
	if err := s.Users.SetRole(ctx, profile.UserID, users.RoleInstructor, users.InstructorStatusApproved); err != nil {
		return nil, err
	}
	if err := s.Instructors.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	if err := s.Reviews.AppendEvent(ctx, event); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *MemoryDecisionStore) Decline(ctx context.Context, review reviews.ManualReview, event reviews.Event, toStatus string) (*Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, err := s.Apps.Transition(ctx, review.ApplicationID, toStatus, StatusSubmitted, StatusUnderReview)
	if err != nil {
		return nil, err
	}
	if err := s.Reviews.Upsert(ctx, review); err != nil {
		return nil, err
	}
	if toStatus == StatusRejected {
		if err := s.Users.SetRole(ctx, app.UserID, users.RoleStudent, users.InstructorStatusRejected); err != nil {
			return nil, err
		}
	}
	if err := s.Reviews.AppendEvent(ctx, event); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *MemoryDecisionStore) Reopen(ctx context.Context, applicationID string, event reviews.Event) (*Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, err := s.Apps.Transition(ctx, applicationID, StatusDraft, StatusRequiresMoreInfo)
	if err != nil {
		return nil, err
	}
	if err := s.Reviews.Delete(ctx, applicationID); err != nil {
		return nil, err
	}
	if err := s.Reviews.AppendEvent(ctx, event); err != nil {
		return nil, err
	}
	return app, nil
}

var _ DecisionStore = (*MemoryDecisionStore)(nil)
