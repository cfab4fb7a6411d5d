package users

import (
	"context"
	"database/sql"
)

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	SetRole(ctx context.Context, userID, role, instructorStatus string) error
}

// SetRoleTx updates the role and instructor status inside an open transaction.
// It exists so the approval cascade can promote the user atomically with the
// application status change.
func SetRoleTx(ctx context.Context, tx *sql.Tx, userID, role, instructorStatus string) error {
	const query = `
UPDATE users SET role = $1, instructor_status = $2, updated_at = now()
WHERE id = $3`
	res, err := tx.ExecContext(ctx, query, role, instructorStatus, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
