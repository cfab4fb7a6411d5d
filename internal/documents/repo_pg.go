package documents

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

const documentColumns = `
    id, application_id, document_type, file_url, file_name, size_bytes, mime_type,
    verification_status, reviewer_id, review_notes, reviewed_at, created_at`

func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO application_documents (
    id, application_id, document_type, file_url, file_name, size_bytes, mime_type,
    verification_status, reviewer_id, review_notes, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID, doc.ApplicationID, doc.DocumentType, doc.FileURL, doc.FileName, doc.SizeBytes, doc.MimeType,
		doc.VerificationStatus, doc.ReviewerID, doc.ReviewNotes, createdAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM application_documents WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) Update(ctx context.Context, doc Document) error {
	const query = `
UPDATE application_documents SET
    verification_status = $1,
    reviewer_id         = $2,
    review_notes        = $3,
    reviewed_at         = $4
WHERE id = $5`
	res, err := r.DB.ExecContext(ctx, query,
		doc.VerificationStatus, doc.ReviewerID, doc.ReviewNotes, doc.ReviewedAt, doc.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, documentID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM application_documents WHERE id = $1`, documentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ListByApplication(ctx context.Context, applicationID string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM application_documents WHERE application_id = $1 ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (r *PGRepo) CountByApplication(ctx context.Context, applicationID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM application_documents WHERE application_id = $1`, applicationID,
	).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	err := row.Scan(
		&doc.ID, &doc.ApplicationID, &doc.DocumentType, &doc.FileURL, &doc.FileName, &doc.SizeBytes, &doc.MimeType,
		&doc.VerificationStatus, &doc.ReviewerID, &doc.ReviewNotes, &doc.ReviewedAt, &doc.CreatedAt,
	)
	return doc, err
}

var _ Repo = (*PGRepo)(nil)
