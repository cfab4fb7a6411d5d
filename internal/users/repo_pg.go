package users

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

// Upsert inserts or refreshes a user row keyed by id.
func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, full_name, role, instructor_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (id) DO UPDATE SET
    email      = EXCLUDED.email,
    full_name  = EXCLUDED.full_name,
    updated_at = EXCLUDED.updated_at`

	role := user.Role
	if role == "" {
		role = RoleStudent
	}
	status := user.InstructorStatus
	if status == "" {
		status = InstructorStatusNone
	}
	now := user.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, query, user.ID, user.Email, user.FullName, role, status, now)
	return err
}

// GetByID fetches a user by id.
func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, full_name, role, instructor_status, created_at, updated_at
FROM users
WHERE id = $1`
	var u User
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.Role,
		&u.InstructorStatus,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// SetRole updates the role and instructor status outside a transaction.
func (r *PGRepo) SetRole(ctx context.Context, userID, role, instructorStatus string) error {
	const query = `
UPDATE users SET role = $1, instructor_status = $2, updated_at = now()
WHERE id = $3`
	res, err := r.DB.ExecContext(ctx, query, role, instructorStatus, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
