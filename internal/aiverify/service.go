package aiverify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"instructor-backend/internal/applications"
	"instructor-backend/internal/documents"
	"instructor-backend/internal/queue"
	"instructor-backend/internal/shared/metrics"
	"instructor-backend/internal/shared/telemetry"
)

// Service owns the AI screening step. Triggering is synchronous and cheap;
// the scoring run itself happens off the request path, either via the queue
// worker or an in-process goroutine.
type Service struct {
	Repo   Repo
	Apps   *applications.Service
	Docs   *documents.Service
	Scorer Scorer
	Queue  queue.Client
}

func NewService(repo Repo, apps *applications.Service, docs *documents.Service, scorer Scorer, queueClient queue.Client) *Service {
	return &Service{Repo: repo, Apps: apps, Docs: docs, Scorer: scorer, Queue: queueClient}
}

// Trigger creates the PENDING verification record and schedules the scoring
// run. Re-triggering an application returns the existing record unchanged.
func (s *Service) Trigger(ctx context.Context, applicationID string) (Verification, error) {
	app, err := s.Apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, applications.ErrNotFound) {
			return Verification{}, ErrNotFound
		}
		return Verification{}, err
	}
	if app.Status == applications.StatusDraft {
		return Verification{}, ErrConflict
	}

	if existing, err := s.Repo.GetByApplication(ctx, applicationID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Verification{}, err
	}

	v := Verification{
		ID:             uuid.NewString(),
		ApplicationID:  applicationID,
		Status:         StatusPending,
		Recommendation: RecommendManualReview,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, v); err != nil {
		return Verification{}, err
	}

	s.schedule(ctx, v.ID)
	return v, nil
}

// GetByApplication returns the verification record for an application.
func (s *Service) GetByApplication(ctx context.Context, applicationID string) (Verification, error) {
	return s.Repo.GetByApplication(ctx, applicationID)
}

func (s *Service) schedule(ctx context.Context, verificationID string) {
	if s.Queue != nil {
		msg := queue.Message{
			VerificationID: verificationID,
			RequestID:      uuid.NewString(),
			EnqueuedAt:     time.Now().UTC().Format(time.RFC3339),
			Version:        1,
		}
		err := s.Queue.Send(ctx, msg)
		if err == nil {
			return
		}
		telemetry.Error("verification enqueue failed, running in process", map[string]any{
			"verification_id": verificationID,
			"err":             err.Error(),
		})
	}
	go s.processAsync(context.Background(), verificationID)
}

func (s *Service) processAsync(ctx context.Context, verificationID string) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, verificationID, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := s.Process(ctx, verificationID); err != nil {
		telemetry.Error("verification processing failed", map[string]any{
			"verification_id": verificationID,
			"err":             err.Error(),
		})
	}
}

// Process runs one scoring pass. Called by the queue worker and by the
// in-process fallback. Scorer failures degrade to a manual-review outcome
// instead of blocking the application workflow.
func (s *Service) Process(ctx context.Context, verificationID string) error {
	v, err := s.Repo.GetByID(ctx, verificationID)
	if err != nil {
		return err
	}
	if v.Status == StatusCompleted {
		return nil
	}

	startedAt := time.Now().UTC()
	v.Status = StatusProcessing
	if err := s.Repo.Update(ctx, v); err != nil {
		return err
	}
	metrics.IncVerificationStarted()
	telemetry.Info("verification.status", map[string]any{
		"verification_id":   v.ID,
		"application_id":    v.ApplicationID,
		"status":            StatusProcessing,
		"status_transition": "pending->processing",
	})

	input, err := s.buildInput(ctx, v.ApplicationID)
	if err != nil {
		s.fail(ctx, verificationID, err)
		return err
	}

	scoreCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	result, err := s.Scorer.Score(scoreCtx, input)
	if err != nil {
		// Soft failure: the workflow continues with a human review.
		now := time.Now().UTC()
		v.Status = StatusFailed
		v.Recommendation = RecommendManualReview
		v.FailureReason = err.Error()
		v.CompletedAt = &now
		metrics.IncVerificationFailed()
		telemetry.Error("verification scorer failed", map[string]any{
			"verification_id": v.ID,
			"application_id":  v.ApplicationID,
			"err":             err.Error(),
		})
		return s.Repo.Update(ctx, v)
	}

	now := time.Now().UTC()
	v.Status = StatusCompleted
	v.Recommendation = result.Recommendation
	v.IdentityScore = result.Identity
	v.EducationScore = result.Education
	v.ExperienceScore = result.Experience
	v.ContentQualityScore = result.ContentQuality
	v.LanguageScore = result.Language
	v.ProfessionalismScore = result.Professionalism
	v.OverallScore = result.Overall
	v.Provider = result.Provider
	v.FailureReason = ""
	v.CompletedAt = &now

	if err := s.Repo.Update(ctx, v); err != nil {
		return err
	}
	metrics.IncVerificationCompleted()
	metrics.ObserveVerificationDurationMs(float64(time.Since(startedAt).Milliseconds()))
	telemetry.Info("verification.status", map[string]any{
		"verification_id":   v.ID,
		"application_id":    v.ApplicationID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"recommendation":    v.Recommendation,
		"overall_score":     v.OverallScore,
	})
	return nil
}

func (s *Service) buildInput(ctx context.Context, applicationID string) (ScoringInput, error) {
	app, err := s.Apps.GetByID(ctx, applicationID)
	if err != nil {
		return ScoringInput{}, fmt.Errorf("application lookup: %w", err)
	}
	docs, err := s.Docs.List(ctx, applicationID)
	if err != nil {
		return ScoringInput{}, fmt.Errorf("documents lookup: %w", err)
	}

	byType := make(map[string]int, len(docs))
	for _, doc := range docs {
		byType[doc.DocumentType]++
	}
	return ScoringInput{
		ApplicationID:      applicationID,
		CompletionScore:    app.CompletionScore,
		YearsOfExperience:  app.ProfessionalBackground.YearsOfExperience,
		TeachingExperience: app.TeachingInformation.TeachingExperience,
		SubjectsToTeach:    app.TeachingInformation.SubjectsToTeach,
		MotivationLength:   len(app.TeachingInformation.TeachingMotivation),
		LanguagesSpoken:    app.PersonalInfo.LanguagesSpoken,
		EducationCount:     len(app.ProfessionalBackground.Education),
		CertificationCount: len(app.ProfessionalBackground.Certifications),
		DocumentsByType:    byType,
	}, nil
}

func (s *Service) fail(ctx context.Context, verificationID string, cause error) {
	v, err := s.Repo.GetByID(ctx, verificationID)
	if err != nil {
		telemetry.Error("verification fail lookup", map[string]any{
			"verification_id": verificationID,
			"err":             err.Error(),
		})
		return
	}
	now := time.Now().UTC()
	v.Status = StatusFailed
	v.Recommendation = RecommendManualReview
	v.FailureReason = cause.Error()
	v.CompletedAt = &now
	if err := s.Repo.Update(ctx, v); err != nil {
		telemetry.Error("verification fail update", map[string]any{
			"verification_id": verificationID,
			"err":             err.Error(),
		})
	}
	metrics.IncVerificationFailed()
}
