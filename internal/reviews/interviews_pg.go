package reviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGInterviewsRepo implements InterviewsRepo using Postgres.
type PGInterviewsRepo struct {
	DB *sql.DB
}

// Create inserts a new interview.
func (r *PGInterviewsRepo) Create(ctx context.Context, iv Interview) error {
	const query = `
INSERT INTO interviews (
    id, application_id, interviewer_id, scheduled_at, format, meeting_link,
    scores, recording_consent, status, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`

	scores, err := json.Marshal(scoresOrEmpty(iv.Scores))
	if err != nil {
		return err
	}
	createdAt := iv.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = r.DB.ExecContext(ctx, query,
		iv.ID,
		iv.ApplicationID,
		iv.InterviewerID,
		iv.ScheduledAt,
		iv.Format,
		iv.MeetingLink,
		scores,
		iv.RecordingConsent,
		iv.Status,
		createdAt,
	)
	return err
}

// GetByID fetches an interview by id.
func (r *PGInterviewsRepo) GetByID(ctx context.Context, interviewID string) (Interview, error) {
	const query = `
SELECT id, application_id, interviewer_id, scheduled_at, format, meeting_link,
       started_at, ended_at, scores, passed, feedback, recording_consent, status,
       created_at, updated_at
FROM interviews
WHERE id = $1`

	iv, err := scanInterview(r.DB.QueryRowContext(ctx, query, interviewID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Interview{}, ErrNotFound
		}
		return Interview{}, err
	}
	return iv, nil
}

// Update writes interview actuals, scores, and status.
func (r *PGInterviewsRepo) Update(ctx context.Context, iv Interview) error {
	const query = `
UPDATE interviews SET
    started_at = $1, ended_at = $2, scores = $3, passed = $4,
    feedback = $5, status = $6, updated_at = now()
WHERE id = $7`

	scores, err := json.Marshal(scoresOrEmpty(iv.Scores))
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		iv.StartedAt,
		iv.EndedAt,
		scores,
		iv.Passed,
		iv.Feedback,
		iv.Status,
		iv.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByApplication returns all interviews for an application, oldest first.
func (r *PGInterviewsRepo) ListByApplication(ctx context.Context, applicationID string) ([]Interview, error) {
	const query = `
SELECT id, application_id, interviewer_id, scheduled_at, format, meeting_link,
       started_at, ended_at, scores, passed, feedback, recording_consent, status,
       created_at, updated_at
FROM interviews
WHERE application_id = $1
ORDER BY scheduled_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (Interview, error) {
	var iv Interview
	var meetingLink sql.NullString
	var startedAt, endedAt sql.NullTime
	var scores []byte
	var passed sql.NullBool
	var feedback sql.NullString
	if err := row.Scan(
		&iv.ID,
		&iv.ApplicationID,
		&iv.InterviewerID,
		&iv.ScheduledAt,
		&iv.Format,
		&meetingLink,
		&startedAt,
		&endedAt,
		&scores,
		&passed,
		&feedback,
		&iv.RecordingConsent,
		&iv.Status,
		&iv.CreatedAt,
		&iv.UpdatedAt,
	); err != nil {
		return Interview{}, err
	}
	if meetingLink.Valid {
		iv.MeetingLink = meetingLink.String
	}
	if startedAt.Valid {
		iv.StartedAt = &startedAt.Time
	}
	if endedAt.Valid {
		iv.EndedAt = &endedAt.Time
	}
	if passed.Valid {
		v := passed.Bool
		iv.Passed = &v
	}
	if feedback.Valid {
		iv.Feedback = feedback.String
	}
	if len(scores) > 0 {
		if err := json.Unmarshal(scores, &iv.Scores); err != nil {
			return Interview{}, err
		}
	}
	return iv, nil
}

func scoresOrEmpty(scores map[string]float64) map[string]float64 {
	if scores == nil {
		return map[string]float64{}
	}
	return scores
}

var _ InterviewsRepo = (*PGInterviewsRepo)(nil)
