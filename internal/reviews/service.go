package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ApplicationChecker reports whether an application exists. Wired from the
// applications service so interviews cannot attach to a ghost id.
type ApplicationChecker interface {
	Exists(ctx context.Context, applicationID string) (bool, error)
}

// Service contains business logic for interviews and review history reads.
// Decision-bearing review writes flow through the applications package so
// they commit atomically with the status transition.
type Service struct {
	Repo       Repo
	Interviews InterviewsRepo
	Apps       ApplicationChecker
}

// GetByApplication returns the current review for an application.
func (s *Service) GetByApplication(ctx context.Context, applicationID string) (ManualReview, error) {
	return s.Repo.GetByApplication(ctx, applicationID)
}

// History returns the append-only audit log for an application.
func (s *Service) History(ctx context.Context, applicationID string) ([]Event, error) {
	return s.Repo.ListEvents(ctx, applicationID)
}

// Schedule creates a new interview for an application.
func (s *Service) Schedule(ctx context.Context, iv Interview) (Interview, error) {
	if strings.TrimSpace(iv.ApplicationID) == "" || strings.TrimSpace(iv.InterviewerID) == "" {
		return Interview{}, errors.New("applicationID and interviewerID are required")
	}
	if iv.ScheduledAt.IsZero() {
		return Interview{}, errors.New("scheduledAt is required")
	}
	if s.Apps != nil {
		ok, err := s.Apps.Exists(ctx, iv.ApplicationID)
		if err != nil {
			return Interview{}, err
		}
		if !ok {
			return Interview{}, ErrNotFound
		}
	}
	if iv.Format == "" {
		iv.Format = FormatVideo
	}
	iv.ID = uuid.NewString()
	iv.Status = InterviewScheduled
	iv.CreatedAt = time.Now().UTC()
	if err := s.Interviews.Create(ctx, iv); err != nil {
		return Interview{}, err
	}
	return iv, nil
}

// Complete records the actuals and outcome of a held interview.
func (s *Service) Complete(ctx context.Context, interviewID string, startedAt, endedAt time.Time, scores map[string]float64, passed bool, feedback string) (Interview, error) {
	iv, err := s.Interviews.GetByID(ctx, interviewID)
	if err != nil {
		return Interview{}, err
	}
	if iv.Status == InterviewCompleted {
		return Interview{}, errors.New("interview already completed")
	}
	if !startedAt.IsZero() {
		iv.StartedAt = &startedAt
	}
	if !endedAt.IsZero() {
		iv.EndedAt = &endedAt
	}
	iv.Scores = scores
	iv.Passed = &passed
	iv.Feedback = feedback
	iv.Status = InterviewCompleted
	if err := s.Interviews.Update(ctx, iv); err != nil {
		return Interview{}, err
	}
	return iv, nil
}

// ListInterviews returns all interviews for an application.
func (s *Service) ListInterviews(ctx context.Context, applicationID string) ([]Interview, error) {
	return s.Interviews.ListByApplication(ctx, applicationID)
}
