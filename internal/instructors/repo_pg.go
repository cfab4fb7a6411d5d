package instructors

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

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Upsert creates or refreshes the profile for a user. Performance counters
// are only initialized on insert so re-approval cannot reset earned stats.
func (r *PGRepo) Upsert(ctx context.Context, profile Profile) error {
	return upsertExec(ctx, r.DB, profile)
}

// UpsertTx runs the profile upsert inside an open transaction so the approval
// cascade commits it together with the status change.
func UpsertTx(ctx context.Context, tx *sql.Tx, profile Profile) error {
	return upsertExec(ctx, tx, profile)
}

func upsertExec(ctx context.Context, db execer, profile Profile) error {
	const query = `
INSERT INTO instructor_profiles (
    user_id, application_id, expertise, qualifications, languages, availability,
    total_students, total_courses, average_rating, ratings_count, is_verified,
    created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 0, 0, $7, $8, $8)
ON CONFLICT (user_id) DO UPDATE SET
    application_id = EXCLUDED.application_id,
    expertise      = EXCLUDED.expertise,
    qualifications = EXCLUDED.qualifications,
    languages      = EXCLUDED.languages,
    availability   = EXCLUDED.availability,
    is_verified    = EXCLUDED.is_verified,
    updated_at     = EXCLUDED.updated_at`

	expertise, err := json.Marshal(stringsOrEmpty(profile.Expertise))
	if err != nil {
		return err
	}
	quals, err := json.Marshal(qualsOrEmpty(profile.Qualifications))
	if err != nil {
		return err
	}
	languages, err := json.Marshal(stringsOrEmpty(profile.Languages))
	if err != nil {
		return err
	}
	availability, err := json.Marshal(slotsOrEmpty(profile.Availability))
	if err != nil {
		return err
	}
	now := profile.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	_, err = db.ExecContext(ctx, query,
		profile.UserID,
		profile.ApplicationID,
		expertise,
		quals,
		languages,
		availability,
		profile.IsVerified,
		now,
	)
	return err
}

// GetByUser fetches the profile for a user.
func (r *PGRepo) GetByUser(ctx context.Context, userID string) (Profile, error) {
	const query = `
SELECT user_id, application_id, expertise, qualifications, languages, availability,
       total_students, total_courses, average_rating, ratings_count, is_verified,
       created_at, updated_at
FROM instructor_profiles
WHERE user_id = $1`

	var p Profile
	var expertise, quals, languages, availability []byte
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.ApplicationID,
		&expertise,
		&quals,
		&languages,
		&availability,
		&p.TotalStudents,
		&p.TotalCourses,
		&p.AverageRating,
		&p.RatingsCount,
		&p.IsVerified,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	if err := json.Unmarshal(expertise, &p.Expertise); err != nil {
		return Profile{}, err
	}
	if err := json.Unmarshal(quals, &p.Qualifications); err != nil {
		return Profile{}, err
	}
	if err := json.Unmarshal(languages, &p.Languages); err != nil {
		return Profile{}, err
	}
	if err := json.Unmarshal(availability, &p.Availability); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func qualsOrEmpty(q []Qualification) []Qualification {
	if q == nil {
		return []Qualification{}
	}
	return q
}

func slotsOrEmpty(s []TimeSlot) []TimeSlot {
	if s == nil {
		return []TimeSlot{}
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
