package aiverify

import "time"

// Verification statuses.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Recommendations the scorer can produce. The recommendation advises the
// human reviewer; it never moves the application's status by itself.
const (
	RecommendApprove      = "APPROVE"
	RecommendReject       = "REJECT"
	RecommendManualReview = "MANUAL_REVIEW_REQUIRED"
)

// Verification is the AI screening record for an application. One per
// application; re-triggering returns the existing record.
type Verification struct {
	ID            string `json:"id"`
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
	Recommendation string `json:"recommendation"`

	IdentityScore        float64 `json:"identityScore"`
	EducationScore       float64 `json:"educationScore"`
	ExperienceScore      float64 `json:"experienceScore"`
	ContentQualityScore  float64 `json:"contentQualityScore"`
	LanguageScore        float64 `json:"languageScore"`
	ProfessionalismScore float64 `json:"professionalismScore"`
	OverallScore         float64 `json:"overallScore"`

	Provider      string     `json:"provider,omitempty"`
	FailureReason string     `json:"failureReason,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}
