package applications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const applicationColumns = `
    id, user_id,
    personal_info, professional_background, teaching_information, documents_summary, consents,
    full_name, phone_number, nationality, current_job_title, years_of_experience,
    subjects_to_teach, teaching_motivation,
    status, current_step, completion_score,
    submitted_at, last_auto_save, last_saved_at,
    created_at, updated_at`

// Create inserts a new DRAFT row. The partial unique index on (user_id)
// enforces one live application per user; a violation maps to ErrConflict.
func (r *PGRepo) Create(ctx context.Context, app *Application) error {
	const query = `
INSERT INTO applications (
    id, user_id,
    personal_info, professional_background, teaching_information, documents_summary, consents,
    full_name, phone_number, nationality, current_job_title, years_of_experience,
    subjects_to_teach, teaching_motivation,
    status, current_step, completion_score,
    last_saved_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18, $18)`

	cols, err := marshalSections(app)
	if err != nil {
		return err
	}
	now := app.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	_, err = r.DB.ExecContext(ctx, query,
		app.ID, app.UserID,
		cols.personal, cols.professional, cols.teaching, cols.documents, cols.consents,
		app.FullName, app.PhoneNumber, app.Nationality, app.CurrentJobTitle, app.YearsOfExperience,
		cols.subjects, app.TeachingMotivation,
		app.Status, app.CurrentStep, app.CompletionScore,
		now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

// GetByID fetches a live application by id.
func (r *PGRepo) GetByID(ctx context.Context, applicationID string) (*Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, query, applicationID)
}

// GetByUser fetches the single live application owned by a user.
func (r *PGRepo) GetByUser(ctx context.Context, userID string) (*Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, query, userID)
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg any) (*Application, error) {
	row := r.DB.QueryRowContext(ctx, query, arg)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

// UpdateDraft writes the sections and derived fields, conditional on the row
// still being editable. Zero rows means an admin moved the status.
func (r *PGRepo) UpdateDraft(ctx context.Context, app *Application) error {
	const query = `
UPDATE applications SET
    personal_info           = $1,
    professional_background = $2,
    teaching_information    = $3,
    documents_summary       = $4,
    consents                = $5,
    full_name               = $6,
    phone_number            = $7,
    nationality             = $8,
    current_job_title       = $9,
    years_of_experience     = $10,
    subjects_to_teach       = $11,
    teaching_motivation     = $12,
    current_step            = $13,
    completion_score        = $14,
    last_auto_save          = $15,
    last_saved_at           = $16,
    updated_at              = $16
WHERE id = $17 AND status = $18 AND deleted_at IS NULL`

	cols, err := marshalSections(app)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	res, err := r.DB.ExecContext(ctx, query,
		cols.personal, cols.professional, cols.teaching, cols.documents, cols.consents,
		app.FullName, app.PhoneNumber, app.Nationality, app.CurrentJobTitle, app.YearsOfExperience,
		cols.subjects, app.TeachingMotivation,
		app.CurrentStep, app.CompletionScore,
		app.LastAutoSave, now,
		app.ID, StatusDraft,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	app.LastSavedAt = now
	app.UpdatedAt = now
	return nil
}

// Transition performs the compare-and-swap status move and returns the row as
// written.
func (r *PGRepo) Transition(ctx context.Context, applicationID, toStatus string, fromStatuses ...string) (*Application, error) {
	return transitionExec(ctx, r.DB, applicationID, toStatus, fromStatuses...)
}

// TransitionTx runs the compare-and-swap status move inside an open
// transaction so decision issuance can commit it with its side effects.
func TransitionTx(ctx context.Context, tx *sql.Tx, applicationID, toStatus string, fromStatuses ...string) (*Application, error) {
	return transitionExec(ctx, tx, applicationID, toStatus, fromStatuses...)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func transitionExec(ctx context.Context, db queryRower, applicationID, toStatus string, fromStatuses ...string) (*Application, error) {
	placeholders := make([]string, len(fromStatuses))
	args := []any{toStatus, applicationID}
	for i, s := range fromStatuses {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, s)
	}
	query := `
UPDATE applications SET status = $1, updated_at = now()
WHERE id = $2 AND deleted_at IS NULL AND status IN (` + strings.Join(placeholders, ", ") + `)
RETURNING ` + applicationColumns

	row := db.QueryRowContext(ctx, query, args...)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return app, nil
}

// Submit moves DRAFT to SUBMITTED and stamps submittedAt, the final score,
// and the final step in the same write.
func (r *PGRepo) Submit(ctx context.Context, app *Application) error {
	const query = `
UPDATE applications SET
    consents         = $1,
    status           = $2,
    submitted_at     = $3,
    updated_at       = $3,
    current_step     = $4,
    completion_score = $5
WHERE id = $6 AND status = $7 AND deleted_at IS NULL`

	consents, err := json.Marshal(app.Consents)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, query, consents, StatusSubmitted, now, app.CurrentStep, app.CompletionScore, app.ID, StatusDraft)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	app.Status = StatusSubmitted
	app.SubmittedAt = &now
	app.UpdatedAt = now
	return nil
}

// SoftDelete hides the row, releasing the one-per-user slot.
func (r *PGRepo) SoftDelete(ctx context.Context, applicationID string) error {
	const query = `
UPDATE applications SET deleted_at = now(), updated_at = now()
WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, applicationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a filtered page of applications plus the total match count.
func (r *PGRepo) List(ctx context.Context, filter ListFilter) ([]*Application, int, error) {
	where := []string{"deleted_at IS NULL"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, "(full_name ILIKE "+p+" OR nationality ILIKE "+p+" OR current_job_title ILIKE "+p+")")
	}
	if filter.From != nil {
		where = append(where, "created_at >= "+arg(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "created_at <= "+arg(*filter.To))
	}
	if filter.MinScore > 0 {
		where = append(where, "completion_score >= "+arg(filter.MinScore))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM applications WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := "SELECT " + applicationColumns + " FROM applications WHERE " + cond +
		" ORDER BY created_at DESC LIMIT " + arg(limit) + " OFFSET " + arg(filter.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, app)
	}
	return out, total, rows.Err()
}

// Stats aggregates the admin counters in two queries.
func (r *PGRepo) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByStatus: map[string]int{}}

	rows, err := r.DB.QueryContext(ctx, `
SELECT status, COUNT(*) FROM applications WHERE deleted_at IS NULL GROUP BY status`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	const aggQuery = `
SELECT
    COUNT(*) FILTER (WHERE created_at >= now() - INTERVAL '7 days'),
    COUNT(*) FILTER (WHERE created_at >= now() - INTERVAL '30 days'),
    COALESCE(AVG(EXTRACT(EPOCH FROM (updated_at - submitted_at)) / 3600.0)
        FILTER (WHERE status IN ('APPROVED', 'REJECTED') AND submitted_at IS NOT NULL), 0)
FROM applications
WHERE deleted_at IS NULL`
	err = r.DB.QueryRowContext(ctx, aggQuery).Scan(
		&stats.CreatedLast7Days,
		&stats.CreatedLast30Days,
		&stats.AverageReviewHours,
	)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*Application, error) {
	var app Application
	var personal, professional, teaching, documents, consents, subjects []byte
	err := row.Scan(
		&app.ID, &app.UserID,
		&personal, &professional, &teaching, &documents, &consents,
		&app.FullName, &app.PhoneNumber, &app.Nationality, &app.CurrentJobTitle, &app.YearsOfExperience,
		&subjects, &app.TeachingMotivation,
		&app.Status, &app.CurrentStep, &app.CompletionScore,
		&app.SubmittedAt, &app.LastAutoSave, &app.LastSavedAt,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	for _, col := range []struct {
		data []byte
		dst  any
	}{
		{personal, &app.PersonalInfo},
		{professional, &app.ProfessionalBackground},
		{teaching, &app.TeachingInformation},
		{documents, &app.DocumentsSummary},
		{consents, &app.Consents},
		{subjects, &app.SubjectsToTeach},
	} {
		if len(col.data) == 0 {
			continue
		}
		if err := json.Unmarshal(col.data, col.dst); err != nil {
			return nil, err
		}
	}
	return &app, nil
}

type sectionColumns struct {
	personal, professional, teaching, documents, consents, subjects []byte
}

func marshalSections(app *Application) (sectionColumns, error) {
	var cols sectionColumns
	var err error
	if cols.personal, err = json.Marshal(app.PersonalInfo); err != nil {
		return cols, err
	}
	if cols.professional, err = json.Marshal(app.ProfessionalBackground); err != nil {
		return cols, err
	}
	if cols.teaching, err = json.Marshal(app.TeachingInformation); err != nil {
		return cols, err
	}
	summary := app.DocumentsSummary
	if summary == nil {
		summary = map[string]any{}
	}
	if cols.documents, err = json.Marshal(summary); err != nil {
		return cols, err
	}
	if cols.consents, err = json.Marshal(app.Consents); err != nil {
		return cols, err
	}
	subjects := app.SubjectsToTeach
	if subjects == nil {
		subjects = []string{}
	}
	if cols.subjects, err = json.Marshal(subjects); err != nil {
		return cols, err
	}
	return cols, nil
}

var _ Repo = (*PGRepo)(nil)
