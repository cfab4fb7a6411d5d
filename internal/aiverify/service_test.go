package aiverify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"instructor-backend/internal/applications"
	"instructor-backend/internal/documents"
	"instructor-backend/internal/queue"
	"instructor-backend/internal/users"
)

// recordingQueue accepts every send so no in-process fallback fires.
type recordingQueue struct {
	sent []queue.Message
}

func (q *recordingQueue) Send(_ context.Context, msg queue.Message) error {
	q.sent = append(q.sent, msg)
	return nil
}

type failingScorer struct{}

func (failingScorer) Score(context.Context, ScoringInput) (Result, error) {
	return Result{}, fmt.Errorf("provider unavailable")
}

type verifyFixture struct {
	apps   *applications.Service
	docs   *documents.Service
	svc    *Service
	queue  *recordingQueue
	scorer Scorer
}

func newVerifyFixture(scorer Scorer) *verifyFixture {
	apps := applications.NewService(applications.NewMemoryRepo(), users.NewService(users.NewMemoryRepo()), nil)
	docs := documents.NewService(documents.NewMemoryRepo(), apps, apps)
	apps.Documents = docs

	q := &recordingQueue{}
	return &verifyFixture{
		apps:   apps,
		docs:   docs,
		svc:    NewService(NewMemoryRepo(), apps, docs, scorer, q),
		queue:  q,
		scorer: scorer,
	}
}

func (f *verifyFixture) submittedApplication(t *testing.T, userID string) *applications.Application {
	t.Helper()
	ctx := context.Background()
	app, err := f.apps.Create(ctx, users.User{ID: userID, Email: userID + "@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = f.apps.SaveDraft(ctx, userID, app.ID, applications.DraftUpdate{
		PersonalInfo:           &applications.PersonalInfo{FullName: "Dana Cole", PhoneNumber: "+15550100", LanguagesSpoken: []string{"English"}},
		ProfessionalBackground: &applications.ProfessionalBackground{CurrentJobTitle: "Engineer", YearsOfExperience: 8},
		TeachingInformation:    &applications.TeachingInformation{SubjectsToTeach: []string{"Go"}, TeachingExperience: 3},
	})
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if _, err := f.docs.Add(ctx, userID, app.ID, documents.AddMeta{
		DocumentType: documents.TypeIdentityDocument,
		FileName:     "passport.pdf",
	}); err != nil {
		t.Fatalf("add document: %v", err)
	}
	submitted, err := f.apps.Submit(ctx, userID, app.ID, applications.Consents{TermsAccepted: true, DataProcessingConsent: true})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return submitted
}

func TestTriggerOnDraftConflicts(t *testing.T) {
	f := newVerifyFixture(HeuristicScorer{})
	ctx := context.Background()
	app, err := f.apps.Create(ctx, users.User{ID: "u1", Email: "u1@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.Trigger(ctx, app.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("trigger on draft err = %v, want ErrConflict", err)
	}
}

func TestTriggerUnknownApplicationIsNotFound(t *testing.T) {
	f := newVerifyFixture(HeuristicScorer{})
	if _, err := f.svc.Trigger(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTriggerEnqueuesOnce(t *testing.T) {
	f := newVerifyFixture(HeuristicScorer{})
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")

	v, err := f.svc.Trigger(ctx, app.ID)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if v.Status != StatusPending {
		t.Fatalf("status = %q", v.Status)
	}
	if len(f.queue.sent) != 1 || f.queue.sent[0].VerificationID != v.ID {
		t.Fatalf("queue = %+v", f.queue.sent)
	}

	again, err := f.svc.Trigger(ctx, app.ID)
	if err != nil {
		t.Fatalf("re-trigger: %v", err)
	}
	if again.ID != v.ID {
		t.Fatalf("re-trigger created a new record: %s vs %s", again.ID, v.ID)
	}
	if len(f.queue.sent) != 1 {
		t.Fatalf("re-trigger enqueued again: %d sends", len(f.queue.sent))
	}
}

func TestProcessCompletesWithScores(t *testing.T) {
	f := newVerifyFixture(HeuristicScorer{})
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")

	v, err := f.svc.Trigger(ctx, app.ID)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if err := f.svc.Process(ctx, v.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	done, err := f.svc.GetByApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Fatalf("status = %q", done.Status)
	}
	if done.Provider != "heuristic" {
		t.Fatalf("provider = %q", done.Provider)
	}
	if done.OverallScore <= 0 || done.OverallScore > 100 {
		t.Fatalf("overall = %v", done.OverallScore)
	}
	if done.IdentityScore != 90 {
		t.Fatalf("identity = %v, identity document was attached", done.IdentityScore)
	}
	if done.Recommendation == "" || done.CompletedAt == nil {
		t.Fatalf("incomplete record: %+v", done)
	}

	// re-processing a completed record is a no-op
	if err := f.svc.Process(ctx, v.ID); err != nil {
		t.Fatalf("reprocess: %v", err)
	}
}

func TestProcessScorerFailureDegradesToManualReview(t *testing.T) {
	f := newVerifyFixture(failingScorer{})
	ctx := context.Background()
	app := f.submittedApplication(t, "u1")

	v, err := f.svc.Trigger(ctx, app.ID)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if err := f.svc.Process(ctx, v.ID); err != nil {
		t.Fatalf("process should soft-fail, got %v", err)
	}

	failed, err := f.svc.GetByApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if failed.Status != StatusFailed {
		t.Fatalf("status = %q", failed.Status)
	}
	if failed.Recommendation != RecommendManualReview {
		t.Fatalf("recommendation = %q", failed.Recommendation)
	}
	if failed.FailureReason == "" || failed.CompletedAt == nil {
		t.Fatalf("failure not recorded: %+v", failed)
	}
}
