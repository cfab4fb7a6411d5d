package instructors

import "time"

// TimeSlot is one flattened weekly availability entry.
type TimeSlot struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Qualification is one education or certification credential projected from
// an approved application.
type Qualification struct {
	Title       string `json:"title"`
	Institution string `json:"institution,omitempty"`
	Year        int    `json:"year,omitempty"`
	Source      string `json:"source"`
}

// Profile is the public instructor record materialized by the approval
// cascade. One per user; re-approval updates in place.
type Profile struct {
	UserID         string          `json:"userId"`
	ApplicationID  string          `json:"applicationId"`
	Expertise      []string        `json:"expertise"`
	Qualifications []Qualification `json:"qualifications"`
	Languages      []string        `json:"languages"`
	Availability   []TimeSlot      `json:"availability"`
	TotalStudents  int             `json:"totalStudents"`
	TotalCourses   int             `json:"totalCourses"`
	AverageRating  float64         `json:"averageRating"`
	RatingsCount   int             `json:"ratingsCount"`
	IsVerified     bool            `json:"isVerified"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
