package applications

import (
	"context"
	"errors"
	"testing"

	"instructor-backend/internal/instructors"
	"instructor-backend/internal/notifications"
	"instructor-backend/internal/reviews"
	"instructor-backend/internal/users"
)

type decisionFixture struct {
	apps        *Service
	decisions   *DecisionService
	usersRepo   *users.MemoryRepo
	reviewsRepo *reviews.MemoryRepo
	instructors *instructors.MemoryRepo
	notifier    *notifications.MemoryNotifier
}

func newDecisionFixture() *decisionFixture {
	appsRepo := NewMemoryRepo()
	usersRepo := users.NewMemoryRepo()
	reviewsRepo := reviews.NewMemoryRepo()
	instructorsRepo := instructors.NewMemoryRepo()
	notifier := notifications.NewMemoryNotifier()

	apps := NewService(appsRepo, users.NewService(usersRepo), nil)
	store := &MemoryDecisionStore{
		Apps:        appsRepo,
		Reviews:     reviewsRepo,
		Users:       usersRepo,
		Instructors: instructorsRepo,
	}
	return &decisionFixture{
		apps:        apps,
		decisions:   NewDecisionService(apps, store, reviewsRepo, notifier),
		usersRepo:   usersRepo,
		reviewsRepo: reviewsRepo,
		instructors: instructorsRepo,
		notifier:    notifier,
	}
}

// submittedApplication walks a fresh application to SUBMITTED.
func (f *decisionFixture) submittedApplication(t *testing.T, userID string) *Application {
	t.Helper()
	ctx := context.Background()
	app, err := f.apps.Create(ctx, testUser(userID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.apps.SaveDraft(ctx, userID, app.ID, completeDraft()); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	submitted, err := f.apps.Submit(ctx, userID, app.ID, Consents{TermsAccepted: true, DataProcessingConsent: true})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return submitted
}

func TestStartReviewClaimsOnce(t *testing.T) {
	f := newDecisionFixture()
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")

	claimed, err := f.decisions.StartReview(ctx, app.ID, "admin-1")
	if err != nil {
		t.Fatalf("start review: %v", err)
	}
	if claimed.Status != StatusUnderReview {
		t.Fatalf("status = %q", claimed.Status)
	}

	if _, err := f.decisions.StartReview(ctx, app.ID, "admin-2"); !errors.Is(err, ErrConflict) {
		t.Fatalf("second claim err = %v, want ErrConflict", err)
	}
}

func TestApproveRunsFullCascade(t *testing.T) {
	f := newDecisionFixture()
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")
	if _, err := f.decisions.StartReview(ctx, app.ID, "admin-1"); err != nil {
		t.Fatalf("start review: %v", err)
	}

	approved, err := f.decisions.Approve(ctx, app.ID, "admin-1", "solid teaching background", ReviewInput{TeachingScore: 8})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != StatusApproved {
		t.Fatalf("status = %q", approved.Status)
	}

	u, err := f.usersRepo.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.Role != users.RoleInstructor || u.InstructorStatus != users.InstructorStatusApproved {
		t.Fatalf("user = %s/%s, want INSTRUCTOR/APPROVED", u.Role, u.InstructorStatus)
	}

	profile, err := f.instructors.GetByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if !profile.IsVerified {
		t.Fatal("profile not marked verified")
	}
	if len(profile.Expertise) == 0 || profile.Expertise[0] != "Go" {
		t.Fatalf("expertise = %v", profile.Expertise)
	}

	review, err := f.reviewsRepo.GetByApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("load review: %v", err)
	}
	if review.Decision != reviews.DecisionApprove {
		t.Fatalf("review decision = %q", review.Decision)
	}

	sent := f.notifier.Sent()
	if len(sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sent))
	}
	if sent[0].UserID != "u1" {
		t.Fatalf("notification target = %q", sent[0].UserID)
	}
}

func TestApproveTwiceKeepsOneProfile(t *testing.T) {
	f := newDecisionFixture()
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")

	if _, err := f.decisions.Approve(ctx, app.ID, "admin-1", "ok", ReviewInput{}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	// the status guard makes a second approval a no-op failure
	if _, err := f.decisions.Approve(ctx, app.ID, "admin-1", "ok", ReviewInput{}); !errors.Is(err, ErrConflict) {
		t.Fatalf("re-approve err = %v, want ErrConflict", err)
	}
	if f.instructors.Count() != 1 {
		t.Fatalf("profiles = %d, want 1", f.instructors.Count())
	}
}

func TestApproveDraftConflicts(t *testing.T) {
	f := newDecisionFixture()
	ctx := context.Background()
	app, err := f.apps.Create(ctx, testUser("u1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.decisions.Approve(ctx, app.ID, "admin-1", "ok", ReviewInput{}); !errors.Is(err, ErrConflict) {
		t.Fatalf("approve draft err = %v, want ErrConflict", err)
	}
}

func TestRejectFinalDemotesUser(t *testing.T) {
	f := newDecisionFixture()
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")

	rejected, err := f.decisions.Reject(ctx, app.ID, "admin-1", "insufficient experience", false, ReviewInput{})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Fatalf("status = %q", rejected.Status)
	}

	u, _ := f.usersRepo.GetByID(ctx, "u1")
	if u.Role != users.RoleStudent || u.InstructorStatus != users.InstructorStatusRejected {
		t.Fatalf("user = %s/%s, want STUDENT/REJECTED", u.Role, u.InstructorStatus)
	}
	if f.instructors.Count() != 0 {
		t.Fatal("rejection created an instructor profile")
	}
}

func TestRejectWithResubmissionParksApplication(t *testing.T) {
	f := newDecisionFixture()
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")

	parked, err := f.decisions.Reject(ctx, app.ID, "admin-1", "certificate unreadable", true, ReviewInput{})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if parked.Status != StatusRequiresMoreInfo {
		t.Fatalf("status = %q", parked.Status)
	}

	// resubmission path keeps the user's pending state
	u, _ := f.usersRepo.GetByID(ctx, "u1")
	if u.InstructorStatus != users.InstructorStatusPending {
		t.Fatalf("instructorStatus = %q, want PENDING", u.InstructorStatus)
	}
}

func TestRequestMoreInfoRequiresItems(t *testing.T) {
	f := newDecisionFixture()
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")

	if _, err := f.decisions.RequestMoreInfo(ctx, app.ID, "admin-1", nil, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty requiredInfo err = %v, want ErrValidation", err)
	}

	parked, err := f.decisions.RequestMoreInfo(ctx, app.ID, "admin-1", []string{"teaching certificate"}, nil)
	if err != nil {
		t.Fatalf("request info: %v", err)
	}
	if parked.Status != StatusRequiresMoreInfo {
		t.Fatalf("status = %q", parked.Status)
	}

	sent := f.notifier.Sent()
	if len(sent) != 1 || sent[0].Title != "More information needed" {
		t.Fatalf("notifications = %+v", sent)
	}
}

func TestReopenPurgesReviewAndKeepsAudit(t *testing.T) {
	f := newDecisionFixture()
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")
	if _, err := f.decisions.Reject(ctx, app.ID, "admin-1", "needs work", true, ReviewInput{}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	reopened, err := f.decisions.Reopen(ctx, "u1", app.ID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != StatusDraft {
		t.Fatalf("status = %q", reopened.Status)
	}

	if _, err := f.reviewsRepo.GetByApplication(ctx, app.ID); !errors.Is(err, reviews.ErrNotFound) {
		t.Fatalf("review after reopen err = %v, want ErrNotFound", err)
	}

	events, err := f.reviewsRepo.ListEvents(ctx, app.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	var superseded bool
	for _, ev := range events {
		if ev.EventType == reviews.EventSuperseded && ev.Decision == reviews.DecisionReject {
			superseded = true
		}
	}
	if !superseded {
		t.Fatalf("no superseded audit entry in %+v", events)
	}
}

func TestReopenOnlyFromRequiresMoreInfo(t *testing.T) {
	f := newDecisionFixture()
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")

	if _, err := f.decisions.Reopen(ctx, "u1", app.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("reopen submitted err = %v, want ErrConflict", err)
	}
}

func TestReopenOwnerOnly(t *testing.T) {
	f := newDecisionFixture()
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")
	if _, err := f.decisions.Reject(ctx, app.ID, "admin-1", "needs work", true, ReviewInput{}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := f.decisions.Reopen(ctx, "u2", app.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign reopen err = %v, want ErrNotFound", err)
	}
}

func TestRecordReviewDoesNotMoveStatus(t *testing.T) {
	f := newDecisionFixture()
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")

	review, err := f.decisions.RecordReview(ctx, app.ID, "admin-1", reviews.DecisionApprove, "looks good", ReviewInput{TeachingScore: 9})
	if err != nil {
		t.Fatalf("record review: %v", err)
	}
	if review.Decision != reviews.DecisionApprove {
		t.Fatalf("decision = %q", review.Decision)
	}

	got, err := f.apps.GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != StatusSubmitted {
		t.Fatalf("status = %q, recording a review must not transition", got.Status)
	}

	if _, err := f.decisions.RecordReview(ctx, app.ID, "admin-1", "MAYBE", "", ReviewInput{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad decision err = %v, want ErrValidation", err)
	}
}

func TestRecordReviewReplacesPrevious(t *testing.T) {
	f := newDecisionFixture()
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")

	first, err := f.decisions.RecordReview(ctx, app.ID, "admin-1", reviews.DecisionApprove, "strong demo", ReviewInput{TeachingScore: 9})
	if err != nil {
		t.Fatalf("first review: %v", err)
	}
	if _, err := f.decisions.RecordReview(ctx, app.ID, "admin-2", reviews.DecisionReject, "credentials unverifiable", ReviewInput{TeachingScore: 4}); err != nil {
		t.Fatalf("second review: %v", err)
	}

	got, err := f.reviewsRepo.GetByApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("load review: %v", err)
	}
	if got.Decision != reviews.DecisionReject {
		t.Fatalf("decision = %q, second review must replace the first", got.Decision)
	}
	if got.ReviewerID != "admin-2" || got.TeachingScore != 4 {
		t.Fatalf("review not replaced: %+v", got)
	}
	if got.DecisionReason != "credentials unverifiable" {
		t.Fatalf("reason = %q", got.DecisionReason)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("replacement must keep the original createdAt: %v vs %v", got.CreatedAt, first.CreatedAt)
	}

	// both decisions stay in the audit log even though one row remains
	events, err := f.reviewsRepo.ListEvents(ctx, app.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
}
