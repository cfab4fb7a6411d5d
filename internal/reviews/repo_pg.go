package reviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Upsert inserts or replaces the current review for an application.
func (r *PGRepo) Upsert(ctx context.Context, review ManualReview) error {
	return upsertExec(ctx, r.DB, review)
}

// UpsertTx runs the review upsert inside an open transaction so decision
// issuance can commit it together with the status change.
func UpsertTx(ctx context.Context, tx *sql.Tx, review ManualReview) error {
	return upsertExec(ctx, tx, review)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertExec(ctx context.Context, db execer, review ManualReview) error {
	const query = `
INSERT INTO manual_reviews (
    application_id, reviewer_id,
    teaching_score, experience_score, communication_score, qualification_score,
    strengths, weaknesses, concerns, recommendations,
    decision, decision_reason, conditional_requirements,
    created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
ON CONFLICT (application_id) DO UPDATE SET
    reviewer_id              = EXCLUDED.reviewer_id,
    teaching_score           = EXCLUDED.teaching_score,
    experience_score         = EXCLUDED.experience_score,
    communication_score      = EXCLUDED.communication_score,
    qualification_score      = EXCLUDED.qualification_score,
    strengths                = EXCLUDED.strengths,
    weaknesses               = EXCLUDED.weaknesses,
    concerns                 = EXCLUDED.concerns,
    recommendations          = EXCLUDED.recommendations,
    decision                 = EXCLUDED.decision,
    decision_reason          = EXCLUDED.decision_reason,
    conditional_requirements = EXCLUDED.conditional_requirements,
    updated_at               = EXCLUDED.updated_at`

	reqs, err := json.Marshal(requirementsOrEmpty(review.ConditionalRequirements))
	if err != nil {
		return err
	}
	now := review.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	_, err = db.ExecContext(ctx, query,
		review.ApplicationID,
		review.ReviewerID,
		review.TeachingScore,
		review.ExperienceScore,
		review.CommunicationScore,
		review.QualificationScore,
		review.Strengths,
		review.Weaknesses,
		review.Concerns,
		review.Recommendations,
		review.Decision,
		review.DecisionReason,
		reqs,
		now,
	)
	return err
}

// GetByApplication returns the current review for an application.
func (r *PGRepo) GetByApplication(ctx context.Context, applicationID string) (ManualReview, error) {
	const query = `
SELECT application_id, reviewer_id,
       teaching_score, experience_score, communication_score, qualification_score,
       strengths, weaknesses, concerns, recommendations,
       decision, decision_reason, conditional_requirements,
       created_at, updated_at
FROM manual_reviews
WHERE application_id = $1`

	var review ManualReview
	var reqs []byte
	err := r.DB.QueryRowContext(ctx, query, applicationID).Scan(
		&review.ApplicationID,
		&review.ReviewerID,
		&review.TeachingScore,
		&review.ExperienceScore,
		&review.CommunicationScore,
		&review.QualificationScore,
		&review.Strengths,
		&review.Weaknesses,
		&review.Concerns,
		&review.Recommendations,
		&review.Decision,
		&review.DecisionReason,
		&reqs,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ManualReview{}, ErrNotFound
		}
		return ManualReview{}, err
	}
	if len(reqs) > 0 {
		if err := json.Unmarshal(reqs, &review.ConditionalRequirements); err != nil {
			return ManualReview{}, err
		}
	}
	return review, nil
}

// Delete removes the current review row. The event log is untouched.
func (r *PGRepo) Delete(ctx context.Context, applicationID string) error {
	return deleteExec(ctx, r.DB, applicationID)
}

// DeleteTx removes the current review row inside an open transaction.
func DeleteTx(ctx context.Context, tx *sql.Tx, applicationID string) error {
	return deleteExec(ctx, tx, applicationID)
}

func deleteExec(ctx context.Context, db execer, applicationID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM manual_reviews WHERE application_id = $1`, applicationID)
	return err
}

// AppendEvent records one audit event.
func (r *PGRepo) AppendEvent(ctx context.Context, event Event) error {
	return appendEventExec(ctx, r.DB, event)
}

// AppendEventTx records one audit event inside an open transaction.
func AppendEventTx(ctx context.Context, tx *sql.Tx, event Event) error {
	return appendEventExec(ctx, tx, event)
}

func appendEventExec(ctx context.Context, db execer, event Event) error {
	const query = `
INSERT INTO review_events (id, application_id, reviewer_id, event_type, decision, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, query,
		event.ID,
		event.ApplicationID,
		event.ReviewerID,
		event.EventType,
		event.Decision,
		event.Reason,
		createdAt,
	)
	return err
}

// ListEvents returns the audit history, oldest first.
func (r *PGRepo) ListEvents(ctx context.Context, applicationID string) ([]Event, error) {
	const query = `
SELECT id, application_id, reviewer_id, event_type, decision, reason, created_at
FROM review_events
WHERE application_id = $1
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.ApplicationID, &ev.ReviewerID, &ev.EventType, &ev.Decision, &ev.Reason, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func requirementsOrEmpty(reqs []string) []string {
	if reqs == nil {
		return []string{}
	}
	return reqs
}

var _ Repo = (*PGRepo)(nil)
