package applications

import (
	"sort"
	"time"

	"instructor-backend/internal/instructors"
)

// buildInstructorProfile projects an approved application into the public
// instructor profile. Performance counters start at zero; the repository
// upsert preserves them on re-approval.
func buildInstructorProfile(app *Application, now time.Time) instructors.Profile {
	profile := instructors.Profile{
		UserID:        app.UserID,
		ApplicationID: app.ID,
		Expertise:     append([]string(nil), app.TeachingInformation.SubjectsToTeach...),
		Languages:     append([]string(nil), app.PersonalInfo.LanguagesSpoken...),
		IsVerified:    true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, edu := range app.ProfessionalBackground.Education {
		title := edu.Degree
		if title == "" {
			title = edu.Institution
		}
		if title == "" {
			continue
		}
		profile.Qualifications = append(profile.Qualifications, instructors.Qualification{
			Title:       title,
			Institution: edu.Institution,
			Year:        edu.Year,
			Source:      "EDUCATION",
		})
	}
	for _, cert := range app.ProfessionalBackground.Certifications {
		if cert == "" {
			continue
		}
		profile.Qualifications = append(profile.Qualifications, instructors.Qualification{
			Title:  cert,
			Source: "CERTIFICATION",
		})
	}

	profile.Availability = flattenAvailability(app.TeachingInformation.WeeklyAvailability)
	return profile
}

// flattenAvailability turns the per-day map of ranges into a flat slot list
// with a stable day order.
func flattenAvailability(weekly map[string][]TimeRange) []instructors.TimeSlot {
	if len(weekly) == 0 {
		return nil
	}
	days := make([]string, 0, len(weekly))
	for day := range weekly {
		days = append(days, day)
	}
	sort.Strings(days)

	var slots []instructors.TimeSlot
	for _, day := range days {
		for _, r := range weekly[day] {
			if r.Start == "" && r.End == "" {
				continue
			}
			slots = append(slots, instructors.TimeSlot{
				Day:   day,
				Start: r.Start,
				End:   r.End,
			})
		}
	}
	return slots
}
