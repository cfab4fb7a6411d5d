package aiverify

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const verificationColumns = `
    id, application_id, status, recommendation,
    identity_score, education_score, experience_score,
    content_quality_score, language_score, professionalism_score, overall_score,
    provider, failure_reason, created_at, completed_at`

func (r *PGRepo) Create(ctx context.Context, v Verification) error {
	const query = `
INSERT INTO ai_verifications (
    id, application_id, status, recommendation,
    identity_score, education_score, experience_score,
    content_quality_score, language_score, professionalism_score, overall_score,
    provider, failure_reason, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	createdAt := v.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, query,
		v.ID, v.ApplicationID, v.Status, v.Recommendation,
		v.IdentityScore, v.EducationScore, v.ExperienceScore,
		v.ContentQualityScore, v.LanguageScore, v.ProfessionalismScore, v.OverallScore,
		v.Provider, v.FailureReason, createdAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, verificationID string) (Verification, error) {
	query := `SELECT ` + verificationColumns + ` FROM ai_verifications WHERE id = $1`
	return r.getOne(ctx, query, verificationID)
}

func (r *PGRepo) GetByApplication(ctx context.Context, applicationID string) (Verification, error) {
	query := `SELECT ` + verificationColumns + ` FROM ai_verifications WHERE application_id = $1`
	return r.getOne(ctx, query, applicationID)
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg any) (Verification, error) {
	var v Verification
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&v.ID, &v.ApplicationID, &v.Status, &v.Recommendation,
		&v.IdentityScore, &v.EducationScore, &v.ExperienceScore,
		&v.ContentQualityScore, &v.LanguageScore, &v.ProfessionalismScore, &v.OverallScore,
		&v.Provider, &v.FailureReason, &v.CreatedAt, &v.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Verification{}, ErrNotFound
		}
		return Verification{}, err
	}
	return v, nil
}

func (r *PGRepo) Update(ctx context.Context, v Verification) error {
	const query = `
UPDATE ai_verifications SET
    status                = $1,
    recommendation        = $2,
    identity_score        = $3,
    education_score       = $4,
    experience_score      = $5,
    content_quality_score = $6,
    language_score        = $7,
    professionalism_score = $8,
    overall_score         = $9,
    provider              = $10,
    failure_reason        = $11,
    completed_at          = $12
WHERE id = $13`
	res, err := r.DB.ExecContext(ctx, query,
		v.Status, v.Recommendation,
		v.IdentityScore, v.EducationScore, v.ExperienceScore,
		v.ContentQualityScore, v.LanguageScore, v.ProfessionalismScore, v.OverallScore,
		v.Provider, v.FailureReason, v.CompletedAt, v.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
