package applications

import "time"

// Application statuses. DRAFT is the only state the owner may edit in;
// everything after submission is admin-driven.
const (
	StatusDraft            = "DRAFT"
	StatusSubmitted        = "SUBMITTED"
	StatusUnderReview      = "UNDER_REVIEW"
	StatusApproved         = "APPROVED"
	StatusRejected         = "REJECTED"
	StatusRequiresMoreInfo = "REQUIRES_MORE_INFO"
)

// Application is the single per-user instructor verification case.
type Application struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	PersonalInfo           PersonalInfo           `json:"personalInfo"`
	ProfessionalBackground ProfessionalBackground `json:"professionalBackground"`
	TeachingInformation    TeachingInformation    `json:"teachingInformation"`
	DocumentsSummary       map[string]any         `json:"documents,omitempty"`
	Consents               Consents               `json:"consents"`

	// Denormalized from the sections for fast querying; refreshed on every
	// mutating operation.
	FullName           string   `json:"fullName"`
	PhoneNumber        string   `json:"phoneNumber"`
	Nationality        string   `json:"nationality"`
	CurrentJobTitle    string   `json:"currentJobTitle"`
	YearsOfExperience  int      `json:"yearsOfExperience"`
	SubjectsToTeach    []string `json:"subjectsToTeach"`
	TeachingMotivation string   `json:"teachingMotivation"`

	Status          string     `json:"status"`
	CurrentStep     int        `json:"currentStep"`
	CompletionScore int        `json:"completionScore"`
	SubmittedAt     *time.Time `json:"submittedAt,omitempty"`
	LastAutoSave    *time.Time `json:"lastAutoSave,omitempty"`
	LastSavedAt     time.Time  `json:"lastSavedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// refreshDerived re-projects the denormalized scalars from the sections.
func (a *Application) refreshDerived() {
	a.FullName = a.PersonalInfo.FullName
	a.PhoneNumber = a.PersonalInfo.PhoneNumber
	a.Nationality = a.PersonalInfo.Nationality
	a.CurrentJobTitle = a.ProfessionalBackground.CurrentJobTitle
	a.YearsOfExperience = a.ProfessionalBackground.YearsOfExperience
	a.SubjectsToTeach = a.TeachingInformation.SubjectsToTeach
	a.TeachingMotivation = a.TeachingInformation.TeachingMotivation
}

// Editable reports whether the owner may mutate the intake sections.
func (a *Application) Editable() bool {
	return a.Status == StatusDraft
}

// Decidable reports whether an admin decision may be issued. UNDER_REVIEW is
// optional bookkeeping, not a mandatory gate.
func (a *Application) Decidable() bool {
	return a.Status == StatusSubmitted || a.Status == StatusUnderReview
}
