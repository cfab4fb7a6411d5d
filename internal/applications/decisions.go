package applications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"instructor-backend/internal/instructors"
	"instructor-backend/internal/notifications"
	"instructor-backend/internal/reviews"
	"instructor-backend/internal/shared/metrics"
	"instructor-backend/internal/shared/telemetry"
)

// DecisionStore commits a decision as one atomic unit: the compare-and-swap
// status transition plus every write hanging off it. A failed precondition
// surfaces as ErrConflict and nothing else is applied.
type DecisionStore interface {
	StartReview(ctx context.Context, applicationID string, event reviews.Event) (*Application, error)
	// Approve promotes the user, materializes the profile, and records the
	// review and audit event together with the APPROVED transition.
	Approve(ctx context.Context, review reviews.ManualReview, profile instructors.Profile, event reviews.Event) (*Application, error)
	// Decline covers REJECTED and REQUIRES_MORE_INFO.
	Decline(ctx context.Context, review reviews.ManualReview, event reviews.Event, toStatus string) (*Application, error)
	// Reopen returns a REQUIRES_MORE_INFO application to DRAFT, purging the
	// current review row. The audit log keeps the superseded decision.
	Reopen(ctx context.Context, applicationID string, event reviews.Event) (*Application, error)
}

// ReviewInput is the reviewer-supplied scoring and commentary for a decision.
type ReviewInput struct {
	TeachingScore           float64  `json:"teachingScore"`
	ExperienceScore         float64  `json:"experienceScore"`
	CommunicationScore      float64  `json:"communicationScore"`
	QualificationScore      float64  `json:"qualificationScore"`
	Strengths               string   `json:"strengths"`
	Weaknesses              string   `json:"weaknesses"`
	Concerns                string   `json:"concerns"`
	Recommendations         string   `json:"recommendations"`
	ConditionalRequirements []string `json:"conditionalRequirements"`
}

// DecisionService drives the admin side of the lifecycle. Notification
// dispatch is fire-and-forget; a failure there never rolls back a decision.
type DecisionService struct {
	Apps     *Service
	Store    DecisionStore
	Reviews  reviews.Repo
	Notifier notifications.Notifier
}

func NewDecisionService(apps *Service, store DecisionStore, reviewsRepo reviews.Repo, notifier notifications.Notifier) *DecisionService {
	return &DecisionService{Apps: apps, Store: store, Reviews: reviewsRepo, Notifier: notifier}
}

// StartReview claims a SUBMITTED application for review. Claiming an already
// claimed application fails with ErrConflict.
func (d *DecisionService) StartReview(ctx context.Context, applicationID, reviewerID string) (*Application, error) {
	if strings.TrimSpace(reviewerID) == "" {
		return nil, fmt.Errorf("reviewer id is required")
	}
	event := reviews.Event{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		ReviewerID:    reviewerID,
		EventType:     reviews.EventRecorded,
		Reason:        "review started",
		CreatedAt:     time.Now().UTC(),
	}
	return d.Store.StartReview(ctx, applicationID, event)
}

// Approve issues the final positive decision and runs the approval cascade.
// Re-approving updates the existing profile in place rather than duplicating.
func (d *DecisionService) Approve(ctx context.Context, applicationID, reviewerID, notes string, input ReviewInput) (*Application, error) {
	app, err := d.Apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	review := buildReview(applicationID, reviewerID, reviews.DecisionApprove, notes, input, now)
	profile := buildInstructorProfile(app, now)
	event := decisionEvent(applicationID, reviewerID, reviews.DecisionApprove, notes, now)

	updated, err := d.Store.Approve(ctx, review, profile, event)
	if err != nil {
		return nil, err
	}
	metrics.IncDecision()
	d.notify(ctx, notifications.Request{
		UserID:  app.UserID,
		Title:   "Welcome aboard",
		Message: "Your instructor application has been approved.",
		Payload: map[string]any{"applicationId": applicationID, "status": StatusApproved},
	})
	return updated, nil
}

// Reject issues the negative decision. With requiresResubmission the
// application parks in REQUIRES_MORE_INFO so the owner can reopen it.
func (d *DecisionService) Reject(ctx context.Context, applicationID, reviewerID, reason string, requiresResubmission bool, input ReviewInput) (*Application, error) {
	app, err := d.Apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	toStatus := StatusRejected
	if requiresResubmission {
		toStatus = StatusRequiresMoreInfo
	}
	now := time.Now().UTC()
	review := buildReview(applicationID, reviewerID, reviews.DecisionReject, reason, input, now)
	event := decisionEvent(applicationID, reviewerID, reviews.DecisionReject, reason, now)

	updated, err := d.Store.Decline(ctx, review, event, toStatus)
	if err != nil {
		return nil, err
	}
	metrics.IncDecision()

	message := "Your instructor application was not approved."
	if requiresResubmission {
		message = "Your instructor application needs changes before it can be approved."
	}
	d.notify(ctx, notifications.Request{
		UserID:  app.UserID,
		Title:   "Application decision",
		Message: message,
		Payload: map[string]any{"applicationId": applicationID, "status": toStatus, "reason": reason},
	})
	return updated, nil
}

// RequestMoreInfo parks the application in REQUIRES_MORE_INFO with an
// explicit list of what the owner must supply.
func (d *DecisionService) RequestMoreInfo(ctx context.Context, applicationID, reviewerID string, requiredInfo []string, deadline *time.Time) (*Application, error) {
	app, err := d.Apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if len(requiredInfo) == 0 {
		return nil, fmt.Errorf("%w: requiredInfo must not be empty", ErrValidation)
	}

	now := time.Now().UTC()
	review := reviews.ManualReview{
		ApplicationID:           applicationID,
		ReviewerID:              reviewerID,
		Decision:                reviews.DecisionRequestMoreInfo,
		DecisionReason:          "additional information required",
		ConditionalRequirements: requiredInfo,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	event := decisionEvent(applicationID, reviewerID, reviews.DecisionRequestMoreInfo, strings.Join(requiredInfo, "; "), now)

	updated, err := d.Store.Decline(ctx, review, event, StatusRequiresMoreInfo)
	if err != nil {
		return nil, err
	}
	metrics.IncDecision()

	payload := map[string]any{"applicationId": applicationID, "requiredInfo": requiredInfo}
	if deadline != nil {
		payload["deadline"] = deadline.UTC().Format(time.RFC3339)
	}
	d.notify(ctx, notifications.Request{
		UserID:  app.UserID,
		Title:   "More information needed",
		Message: "Your instructor application needs additional information.",
		Payload: payload,
	})
	return updated, nil
}

// Reopen is the owner's resubmission path out of REQUIRES_MORE_INFO. The
// current review is purged and marked superseded in the audit log; the
// application returns to DRAFT for editing.
func (d *DecisionService) Reopen(ctx context.Context, userID, applicationID string) (*Application, error) {
	app, err := d.Apps.GetOwned(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != StatusRequiresMoreInfo {
		return nil, ErrConflict
	}

	prior, err := d.Reviews.GetByApplication(ctx, applicationID)
	reason := "reopened for resubmission"
	priorDecision := ""
	if err == nil {
		priorDecision = prior.Decision
	}
	event := reviews.Event{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		EventType:     reviews.EventSuperseded,
		Decision:      priorDecision,
		Reason:        reason,
		CreatedAt:     time.Now().UTC(),
	}
	return d.Store.Reopen(ctx, applicationID, event)
}

// RecordReview upserts a manual review without moving the application's
// status. Latest decision wins; the replaced one stays in the audit log.
func (d *DecisionService) RecordReview(ctx context.Context, applicationID, reviewerID, decision, reason string, input ReviewInput) (reviews.ManualReview, error) {
	if _, err := d.Apps.GetByID(ctx, applicationID); err != nil {
		return reviews.ManualReview{}, err
	}
	switch decision {
	case reviews.DecisionApprove, reviews.DecisionReject, reviews.DecisionRequestMoreInfo:
	default:
		return reviews.ManualReview{}, fmt.Errorf("%w: unknown decision %q", ErrValidation, decision)
	}

	now := time.Now().UTC()
	review := buildReview(applicationID, reviewerID, decision, reason, input, now)
	if err := d.Reviews.Upsert(ctx, review); err != nil {
		return reviews.ManualReview{}, err
	}
	if err := d.Reviews.AppendEvent(ctx, decisionEvent(applicationID, reviewerID, decision, reason, now)); err != nil {
		return reviews.ManualReview{}, err
	}
	return review, nil
}

func (d *DecisionService) notify(ctx context.Context, req notifications.Request) {
	if d.Notifier == nil {
		return
	}
	if err := d.Notifier.Notify(ctx, req); err != nil {
		telemetry.Error("notification dispatch failed", map[string]any{
			"user_id": req.UserID,
			"title":   req.Title,
			"err":     err.Error(),
		})
	}
}

func buildReview(applicationID, reviewerID, decision, reason string, input ReviewInput, now time.Time) reviews.ManualReview {
	return reviews.ManualReview{
		ApplicationID:           applicationID,
		ReviewerID:              reviewerID,
		TeachingScore:           input.TeachingScore,
		ExperienceScore:         input.ExperienceScore,
		CommunicationScore:      input.CommunicationScore,
		QualificationScore:      input.QualificationScore,
		Strengths:               input.Strengths,
		Weaknesses:              input.Weaknesses,
		Concerns:                input.Concerns,
		Recommendations:         input.Recommendations,
		Decision:                decision,
		DecisionReason:          reason,
		ConditionalRequirements: input.ConditionalRequirements,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

func decisionEvent(applicationID, reviewerID, decision, reason string, now time.Time) reviews.Event {
	return reviews.Event{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		ReviewerID:    reviewerID,
		EventType:     reviews.EventRecorded,
		Decision:      decision,
		Reason:        reason,
		CreatedAt:     now,
	}
}
