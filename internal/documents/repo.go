package documents

import "context"

// Repo defines persistence for application documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	Update(ctx context.Context, doc Document) error
	Delete(ctx context.Context, documentID string) error
	ListByApplication(ctx context.Context, applicationID string) ([]Document, error)
	CountByApplication(ctx context.Context, applicationID string) (int, error)
}
