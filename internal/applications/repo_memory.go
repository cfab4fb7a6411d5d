package applications

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is the in-memory Repo used when DATABASE_URL is unset and in
// tests. Same conditional-update semantics as the Postgres implementation.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]*Application
	byUser map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]*Application),
		byUser: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(_ context.Context, app *Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byUser[app.UserID]; exists {
		return ErrConflict
	}
	if app.CreatedAt.IsZero() {
		now := time.Now().UTC()
		app.CreatedAt = now
		app.UpdatedAt = now
		app.LastSavedAt = now
	}
	stored := cloneApplication(app)
	r.byID[app.ID] = stored
	r.byUser[app.UserID] = app.ID
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, applicationID string) (*Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.byID[applicationID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneApplication(app), nil
}

func (r *MemoryRepo) GetByUser(_ context.Context, userID string) (*Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneApplication(r.byID[id]), nil
}

func (r *MemoryRepo) UpdateDraft(_ context.Context, app *Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[app.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != StatusDraft {
		return ErrConflict
	}
	now := time.Now().UTC()
	app.Status = stored.Status
	app.SubmittedAt = stored.SubmittedAt
	app.CreatedAt = stored.CreatedAt
	app.LastSavedAt = now
	app.UpdatedAt = now
	r.byID[app.ID] = cloneApplication(app)
	return nil
}

func (r *MemoryRepo) Transition(_ context.Context, applicationID, toStatus string, fromStatuses ...string) (*Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[applicationID]
	if !ok {
		return nil, ErrConflict
	}
	matched := false
	for _, s := range fromStatuses {
		if stored.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return nil, ErrConflict
	}
	stored.Status = toStatus
	stored.UpdatedAt = time.Now().UTC()
	return cloneApplication(stored), nil
}

func (r *MemoryRepo) Submit(_ context.Context, app *Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[app.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != StatusDraft {
		return ErrConflict
	}
	now := time.Now().UTC()
	stored.Consents = app.Consents
	stored.Status = StatusSubmitted
	stored.SubmittedAt = &now
	stored.UpdatedAt = now
	stored.CurrentStep = app.CurrentStep
	stored.CompletionScore = app.CompletionScore
	app.Status = stored.Status
	app.SubmittedAt = stored.SubmittedAt
	app.UpdatedAt = now
	return nil
}

func (r *MemoryRepo) SoftDelete(_ context.Context, applicationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[applicationID]
	if !ok {
		return ErrNotFound
	}
	delete(r.byID, applicationID)
	delete(r.byUser, stored.UserID)
	return nil
}

func (r *MemoryRepo) List(_ context.Context, filter ListFilter) ([]*Application, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Application
	for _, app := range r.byID {
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(app, filter.Search) {
			continue
		}
		if filter.From != nil && app.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && app.CreatedAt.After(*filter.To) {
			continue
		}
		if filter.MinScore > 0 && app.CompletionScore < filter.MinScore {
			continue
		}
		matched = append(matched, app)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	start := filter.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	out := make([]*Application, 0, end-start)
	for _, app := range matched[start:end] {
		out = append(out, cloneApplication(app))
	}
	return out, total, nil
}

func (r *MemoryRepo) Stats(_ context.Context) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{ByStatus: map[string]int{}}
	now := time.Now().UTC()
	var reviewHours float64
	var reviewed int
	for _, app := range r.byID {
		stats.Total++
		stats.ByStatus[app.Status]++
		if app.CreatedAt.After(now.AddDate(0, 0, -7)) {
			stats.CreatedLast7Days++
		}
		if app.CreatedAt.After(now.AddDate(0, 0, -30)) {
			stats.CreatedLast30Days++
		}
		if (app.Status == StatusApproved || app.Status == StatusRejected) && app.SubmittedAt != nil {
			reviewHours += app.UpdatedAt.Sub(*app.SubmittedAt).Hours()
			reviewed++
		}
	}
	if reviewed > 0 {
		stats.AverageReviewHours = reviewHours / float64(reviewed)
	}
	return stats, nil
}

func matchesSearch(app *Application, term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{app.FullName, app.Nationality, app.CurrentJobTitle} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// cloneApplication deep-copies every reference-typed payload so callers can
// mutate what they get back without reaching into the stored row.
func cloneApplication(app *Application) *Application {
	clone := *app
	if app.SubmittedAt != nil {
		t := *app.SubmittedAt
		clone.SubmittedAt = &t
	}
	if app.LastAutoSave != nil {
		t := *app.LastAutoSave
		clone.LastAutoSave = &t
	}

	clone.PersonalInfo.LanguagesSpoken = append([]string(nil), app.PersonalInfo.LanguagesSpoken...)
	clone.PersonalInfo.Extras = cloneAnyMap(app.PersonalInfo.Extras)

	clone.ProfessionalBackground.Education = append([]Education(nil), app.ProfessionalBackground.Education...)
	clone.ProfessionalBackground.Certifications = append([]string(nil), app.ProfessionalBackground.Certifications...)
	clone.ProfessionalBackground.Extras = cloneAnyMap(app.ProfessionalBackground.Extras)

	clone.TeachingInformation.SubjectsToTeach = append([]string(nil), app.TeachingInformation.SubjectsToTeach...)
	clone.TeachingInformation.PreferredLevels = append([]string(nil), app.TeachingInformation.PreferredLevels...)
	clone.TeachingInformation.WeeklyAvailability = cloneAvailability(app.TeachingInformation.WeeklyAvailability)
	clone.TeachingInformation.Extras = cloneAnyMap(app.TeachingInformation.Extras)

	clone.Consents.Extras = cloneAnyMap(app.Consents.Extras)
	clone.DocumentsSummary = cloneAnyMap(app.DocumentsSummary)
	clone.SubjectsToTeach = append([]string(nil), app.SubjectsToTeach...)
	return &clone
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneAny(v)
	}
	return out
}

// cloneAny copies the nesting JSON decoding produces; scalars pass through.
func cloneAny(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneAnyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneAny(e)
		}
		return out
	default:
		return v
	}
}

func cloneAvailability(m map[string][]TimeRange) map[string][]TimeRange {
	if m == nil {
		return nil
	}
	out := make(map[string][]TimeRange, len(m))
	for k, v := range m {
		out[k] = append([]TimeRange(nil), v...)
	}
	return out
}

var _ Repo = (*MemoryRepo)(nil)
