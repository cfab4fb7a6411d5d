package applications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"instructor-backend/internal/shared/telemetry"
	"instructor-backend/internal/users"
)

// DocumentCounter reports how many documents an application has attached.
// Satisfied by the documents service; kept as an interface so this package
// does not depend on it.
type DocumentCounter interface {
	CountByApplication(ctx context.Context, applicationID string) (int, error)
}

// Service owns the application lifecycle on the owner's side: intake, draft
// saves, and submission. Admin decisions live in DecisionService.
type Service struct {
	Repo      Repo
	Users     *users.Service
	Documents DocumentCounter
}

func NewService(repo Repo, usersSvc *users.Service, documents DocumentCounter) *Service {
	return &Service{Repo: repo, Users: usersSvc, Documents: documents}
}

// DraftUpdate carries a partial draft save. Nil sections are left untouched.
type DraftUpdate struct {
	PersonalInfo           *PersonalInfo
	ProfessionalBackground *ProfessionalBackground
	TeachingInformation    *TeachingInformation
	Documents              map[string]any
	Consents               *Consents
	AutoSave               bool
}

// Create opens the user's single DRAFT application. The identity row is
// ensured first so ownership and later promotion have something to point at.
func (s *Service) Create(ctx context.Context, user users.User) (*Application, error) {
	if err := s.Users.EnsureExists(ctx, user); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	app := &Application{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Status:      StatusDraft,
		LastSavedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	app.refreshDerived()
	app.recomputeProgress(0)

	if err := s.Repo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// GetForUser returns the caller's live application.
func (s *Service) GetForUser(ctx context.Context, userID string) (*Application, error) {
	return s.Repo.GetByUser(ctx, userID)
}

// GetOwned returns the application only if the caller owns it. A foreign id
// reads as not found rather than forbidden.
func (s *Service) GetOwned(ctx context.Context, userID, applicationID string) (*Application, error) {
	app, err := s.Repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, ErrNotFound
	}
	return app, nil
}

// GetByID returns any application. Admin read path.
func (s *Service) GetByID(ctx context.Context, applicationID string) (*Application, error) {
	return s.Repo.GetByID(ctx, applicationID)
}

// SaveDraft merges the partial update into the draft, validates the touched
// sections, and recomputes score and step before persisting.
func (s *Service) SaveDraft(ctx context.Context, userID, applicationID string, update DraftUpdate) (*Application, error) {
	app, err := s.GetOwned(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.Editable() {
		return nil, ErrConflict
	}

	if update.PersonalInfo != nil {
		app.PersonalInfo = *update.PersonalInfo
	}
	if update.ProfessionalBackground != nil {
		app.ProfessionalBackground = *update.ProfessionalBackground
	}
	if update.TeachingInformation != nil {
		app.TeachingInformation = *update.TeachingInformation
	}
	if update.Documents != nil {
		app.DocumentsSummary = update.Documents
	}
	if update.Consents != nil {
		app.Consents = *update.Consents
	}
	if err := validateSections(app); err != nil {
		return nil, err
	}

	app.refreshDerived()
	count, err := s.documentCount(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	app.recomputeProgress(count)
	if update.AutoSave {
		now := time.Now().UTC()
		app.LastAutoSave = &now
	}

	if err := s.Repo.UpdateDraft(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Submit validates completeness and moves the draft to SUBMITTED. The user's
// instructor status flips to PENDING as a side effect; failure there is
// logged, not rolled back.
func (s *Service) Submit(ctx context.Context, userID, applicationID string, consents Consents) (*Application, error) {
	app, err := s.GetOwned(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.Editable() {
		return nil, ErrConflict
	}

	app.Consents = consents
	if err := validateForSubmission(app); err != nil {
		return nil, err
	}

	count, err := s.documentCount(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	app.CompletionScore = CompletionScore(app, count)
	app.CurrentStep = stepSubmitted
	if err := s.Repo.Submit(ctx, app); err != nil {
		return nil, err
	}

	if err := s.Users.MarkPending(ctx, userID); err != nil {
		telemetry.Error("mark instructor status pending failed", map[string]any{
			"application_id": app.ID,
			"user_id":        userID,
			"err":            err.Error(),
		})
	}
	return app, nil
}

// Withdraw soft-deletes the application, freeing the one-per-user slot. An
// approved application cannot be withdrawn.
func (s *Service) Withdraw(ctx context.Context, userID, applicationID string) error {
	app, err := s.GetOwned(ctx, userID, applicationID)
	if err != nil {
		return err
	}
	if app.Status == StatusApproved {
		return ErrConflict
	}
	return s.Repo.SoftDelete(ctx, applicationID)
}

// RefreshProgress recomputes score and step after the document set changed.
// Once the application has left DRAFT the stored progress is frozen.
func (s *Service) RefreshProgress(ctx context.Context, applicationID string) error {
	app, err := s.Repo.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if !app.Editable() {
		return nil
	}
	count, err := s.documentCount(ctx, applicationID)
	if err != nil {
		return err
	}
	app.recomputeProgress(count)
	err = s.Repo.UpdateDraft(ctx, app)
	if errors.Is(err, ErrConflict) {
		// Status moved between the read and the write. Progress is frozen
		// anyway, so this is not an error.
		return nil
	}
	return err
}

// OwnerOf reports the owning user of an application. Used by the documents
// service for ownership checks.
func (s *Service) OwnerOf(ctx context.Context, applicationID string) (string, string, error) {
	app, err := s.Repo.GetByID(ctx, applicationID)
	if err != nil {
		return "", "", err
	}
	return app.UserID, app.Status, nil
}

// List serves the admin listing.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Application, int, error) {
	return s.Repo.List(ctx, filter)
}

// Stats serves the admin aggregation.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.Repo.Stats(ctx)
}

func (s *Service) documentCount(ctx context.Context, applicationID string) (int, error) {
	if s.Documents == nil {
		return 0, nil
	}
	return s.Documents.CountByApplication(ctx, applicationID)
}

func validateSections(app *Application) error {
	for _, section := range []any{app.PersonalInfo, app.ProfessionalBackground, app.TeachingInformation} {
		if err := validate.Struct(section); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				return fmt.Errorf("%w: %s", ErrValidation, verrs.Error())
			}
			return err
		}
	}
	return nil
}

func validateForSubmission(app *Application) error {
	if err := validateSections(app); err != nil {
		return err
	}
	missing := []string{}
	if app.PersonalInfo.Empty() {
		missing = append(missing, "personalInfo")
	}
	if app.ProfessionalBackground.Empty() {
		missing = append(missing, "professionalBackground")
	}
	if app.TeachingInformation.Empty() {
		missing = append(missing, "teachingInformation")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required sections: %v", ErrValidation, missing)
	}
	if !app.Consents.TermsAccepted || !app.Consents.DataProcessingConsent {
		return fmt.Errorf("%w: terms and data processing consents are required", ErrValidation)
	}
	return nil
}
