package documents

import "time"

// Document types accepted at intake.
const (
	TypeResume                    = "RESUME"
	TypeIdentityDocument          = "IDENTITY_DOCUMENT"
	TypeEducationCertificate      = "EDUCATION_CERTIFICATE"
	TypeProfessionalCertification = "PROFESSIONAL_CERTIFICATION"
	TypeTeachingCertificate       = "TEACHING_CERTIFICATE"
	TypeOther                     = "OTHER"
)

// Per-document verification statuses. Independent of the application's
// lifecycle status.
const (
	StatusDraft    = "DRAFT"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Document is file metadata attached to an application. The bytes live in
// object storage; the core stores only the reference.
type Document struct {
	ID            string `json:"id"`
	ApplicationID string `json:"applicationId"`
	DocumentType  string `json:"documentType"`
	FileURL       string `json:"fileUrl"`
	FileName      string `json:"fileName"`
	SizeBytes     int64  `json:"sizeBytes"`
	MimeType      string `json:"mimeType"`

	VerificationStatus string     `json:"verificationStatus"`
	ReviewerID         string     `json:"reviewerId,omitempty"`
	ReviewNotes        string     `json:"reviewNotes,omitempty"`
	ReviewedAt         *time.Time `json:"reviewedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

var knownTypes = map[string]bool{
	TypeResume:                    true,
	TypeIdentityDocument:          true,
	TypeEducationCertificate:      true,
	TypeProfessionalCertification: true,
	TypeTeachingCertificate:       true,
	TypeOther:                     true,
}

// ValidType reports whether t is a recognized document type.
func ValidType(t string) bool {
	return knownTypes[t]
}
