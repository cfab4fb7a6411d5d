package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"instructor-backend/internal/shared/telemetry"
)

// ApplicationGuard answers ownership and lifecycle questions about an
// application. Satisfied by the applications service.
type ApplicationGuard interface {
	OwnerOf(ctx context.Context, applicationID string) (userID string, status string, err error)
}

// ScoreRefresher recomputes an application's completion score after the
// document set changed.
type ScoreRefresher interface {
	RefreshProgress(ctx context.Context, applicationID string) error
}

// Service owns document metadata attached to applications.
type Service struct {
	Repo      Repo
	Apps      ApplicationGuard
	Refresher ScoreRefresher
}

func NewService(repo Repo, apps ApplicationGuard, refresher ScoreRefresher) *Service {
	return &Service{Repo: repo, Apps: apps, Refresher: refresher}
}

// AddMeta is the caller-supplied file reference for a new document.
type AddMeta struct {
	DocumentType string `json:"documentType"`
	FileURL      string `json:"fileUrl"`
	FileName     string `json:"fileName"`
	SizeBytes    int64  `json:"sizeBytes"`
	MimeType     string `json:"mimeType"`
}

// Add attaches a document to the caller's application while it is still
// being drafted.
func (s *Service) Add(ctx context.Context, userID, applicationID string, meta AddMeta) (Document, error) {
	if !ValidType(meta.DocumentType) {
		return Document{}, fmt.Errorf("%w: unknown document type %q", ErrValidation, meta.DocumentType)
	}
	if strings.TrimSpace(meta.FileName) == "" {
		return Document{}, fmt.Errorf("%w: fileName is required", ErrValidation)
	}
	if err := s.checkOwnedEditable(ctx, userID, applicationID); err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:                 uuid.NewString(),
		ApplicationID:      applicationID,
		DocumentType:       meta.DocumentType,
		FileURL:            meta.FileURL,
		FileName:           meta.FileName,
		SizeBytes:          meta.SizeBytes,
		MimeType:           meta.MimeType,
		VerificationStatus: StatusDraft,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	s.refresh(ctx, applicationID)
	return doc, nil
}

// Remove detaches a document from the caller's draft.
func (s *Service) Remove(ctx context.Context, userID, applicationID, documentID string) error {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.ApplicationID != applicationID {
		return ErrNotFound
	}
	if err := s.checkOwnedEditable(ctx, userID, applicationID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, documentID); err != nil {
		return err
	}
	s.refresh(ctx, applicationID)
	return nil
}

// Review records an admin's verdict on a single document.
func (s *Service) Review(ctx context.Context, documentID, reviewerID, status, notes string) (Document, error) {
	if status != StatusApproved && status != StatusRejected {
		return Document{}, fmt.Errorf("%w: status must be APPROVED or REJECTED", ErrValidation)
	}
	if strings.TrimSpace(reviewerID) == "" {
		return Document{}, fmt.Errorf("%w: reviewer id is required", ErrValidation)
	}

	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	now := time.Now().UTC()
	doc.VerificationStatus = status
	doc.ReviewerID = reviewerID
	doc.ReviewNotes = notes
	doc.ReviewedAt = &now
	if err := s.Repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// List returns the documents attached to an application.
func (s *Service) List(ctx context.Context, applicationID string) ([]Document, error) {
	return s.Repo.ListByApplication(ctx, applicationID)
}

// CountByApplication satisfies the applications package's score input.
func (s *Service) CountByApplication(ctx context.Context, applicationID string) (int, error) {
	return s.Repo.CountByApplication(ctx, applicationID)
}

func (s *Service) checkOwnedEditable(ctx context.Context, userID, applicationID string) error {
	ownerID, status, err := s.Apps.OwnerOf(ctx, applicationID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrNotFound
	}
	if status != "DRAFT" {
		return ErrConflict
	}
	return nil
}

func (s *Service) refresh(ctx context.Context, applicationID string) {
	if s.Refresher == nil {
		return
	}
	if err := s.Refresher.RefreshProgress(ctx, applicationID); err != nil {
		telemetry.Error("completion score refresh failed", map[string]any{
			"application_id": applicationID,
			"err":            err.Error(),
		})
	}
}
