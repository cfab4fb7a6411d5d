package applications

import (
	"testing"
	"time"
)

func TestBuildInstructorProfile(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	app := &Application{
		ID:     "app-1",
		UserID: "u1",
		PersonalInfo: PersonalInfo{
			FullName:        "Dana Cole",
			LanguagesSpoken: []string{"English", "Dutch"},
		},
		ProfessionalBackground: ProfessionalBackground{
			Education: []Education{
				{Degree: "MSc Computer Science", Institution: "TU Delft", Year: 2016},
				{Institution: "Community College"}, // degree missing, title falls back
				{},                                 // nothing usable, skipped
			},
			Certifications: []string{"AWS Solutions Architect", ""},
		},
		TeachingInformation: TeachingInformation{
			SubjectsToTeach: []string{"Go", "Distributed Systems"},
			WeeklyAvailability: map[string][]TimeRange{
				"monday": {{Start: "09:00", End: "12:00"}},
				"friday": {{Start: "14:00", End: "17:00"}, {}},
			},
		},
	}

	profile := buildInstructorProfile(app, now)

	if profile.UserID != "u1" || profile.ApplicationID != "app-1" {
		t.Fatalf("identity = %s/%s", profile.UserID, profile.ApplicationID)
	}
	if !profile.IsVerified {
		t.Fatal("profile not verified")
	}
	if len(profile.Expertise) != 2 || profile.Expertise[1] != "Distributed Systems" {
		t.Fatalf("expertise = %v", profile.Expertise)
	}
	if len(profile.Languages) != 2 {
		t.Fatalf("languages = %v", profile.Languages)
	}

	if len(profile.Qualifications) != 3 {
		t.Fatalf("qualifications = %+v, want 3", profile.Qualifications)
	}
	if profile.Qualifications[0].Source != "EDUCATION" || profile.Qualifications[0].Title != "MSc Computer Science" {
		t.Fatalf("first qualification = %+v", profile.Qualifications[0])
	}
	if profile.Qualifications[1].Title != "Community College" {
		t.Fatalf("fallback title = %+v", profile.Qualifications[1])
	}
	if profile.Qualifications[2].Source != "CERTIFICATION" {
		t.Fatalf("certification source = %+v", profile.Qualifications[2])
	}

	// empty ranges dropped, days sorted
	if len(profile.Availability) != 2 {
		t.Fatalf("availability = %+v", profile.Availability)
	}
	if profile.Availability[0].Day != "friday" || profile.Availability[1].Day != "monday" {
		t.Fatalf("day order = %+v", profile.Availability)
	}
}

func TestBuildInstructorProfileEmptyApplication(t *testing.T) {
	profile := buildInstructorProfile(&Application{ID: "a", UserID: "u"}, time.Now().UTC())
	if len(profile.Qualifications) != 0 || len(profile.Availability) != 0 {
		t.Fatalf("profile = %+v, want empty projections", profile)
	}
	if !profile.IsVerified {
		t.Fatal("approval always verifies the profile")
	}
}
