package reviews

import "time"

// Review decisions.
const (
	DecisionApprove         = "APPROVE"
	DecisionReject          = "REJECT"
	DecisionRequestMoreInfo = "REQUEST_MORE_INFO"
)

// Audit event types behind the latest-decision-wins review row.
const (
	EventRecorded   = "RECORDED"
	EventSuperseded = "SUPERSEDED"
)

// ManualReview is a reviewer's structured scoring and decision for an
// application. At most one current review exists per application; a new one
// replaces the prior and the history lives in the event log.
type ManualReview struct {
	ApplicationID           string    `json:"applicationId"`
	ReviewerID              string    `json:"reviewerId"`
	TeachingScore           float64   `json:"teachingScore"`
	ExperienceScore         float64   `json:"experienceScore"`
	CommunicationScore      float64   `json:"communicationScore"`
	QualificationScore      float64   `json:"qualificationScore"`
	Strengths               string    `json:"strengths"`
	Weaknesses              string    `json:"weaknesses"`
	Concerns                string    `json:"concerns"`
	Recommendations         string    `json:"recommendations"`
	Decision                string    `json:"decision"`
	DecisionReason          string    `json:"decisionReason"`
	ConditionalRequirements []string  `json:"conditionalRequirements,omitempty"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// Event is one append-only audit record for an application's review history.
type Event struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"applicationId"`
	ReviewerID    string    `json:"reviewerId"`
	EventType     string    `json:"eventType"`
	Decision      string    `json:"decision"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Interview formats.
const (
	FormatVideo    = "VIDEO"
	FormatPhone    = "PHONE"
	FormatInPerson = "IN_PERSON"
)

// Interview statuses.
const (
	InterviewScheduled = "SCHEDULED"
	InterviewCompleted = "COMPLETED"
	InterviewCancelled = "CANCELLED"
)

// Interview records a scheduled or held interview for an application.
type Interview struct {
	ID               string             `json:"id"`
	ApplicationID    string             `json:"applicationId"`
	InterviewerID    string             `json:"interviewerId"`
	ScheduledAt      time.Time          `json:"scheduledAt"`
	Format           string             `json:"format"`
	MeetingLink      string             `json:"meetingLink,omitempty"`
	StartedAt        *time.Time         `json:"startedAt,omitempty"`
	EndedAt          *time.Time         `json:"endedAt,omitempty"`
	Scores           map[string]float64 `json:"scores,omitempty"`
	Passed           *bool              `json:"passed,omitempty"`
	Feedback         string             `json:"feedback,omitempty"`
	RecordingConsent bool               `json:"recordingConsent"`
	Status           string             `json:"status"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}
