package reviews

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubChecker answers existence checks from a fixed set of application ids.
type stubChecker map[string]bool

func (s stubChecker) Exists(_ context.Context, applicationID string) (bool, error) {
	return s[applicationID], nil
}

func newTestService(known ...string) *Service {
	checker := stubChecker{}
	for _, id := range known {
		checker[id] = true
	}
	return &Service{
		Repo:       NewMemoryRepo(),
		Interviews: NewMemoryInterviewsRepo(),
		Apps:       checker,
	}
}

func TestScheduleCreatesInterview(t *testing.T) {
	svc := newTestService("app-1")
	ctx := context.Background()

	iv, err := svc.Schedule(ctx, Interview{
		ApplicationID: "app-1",
		InterviewerID: "admin-1",
		ScheduledAt:   time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if iv.ID == "" {
		t.Fatal("interview id not assigned")
	}
	if iv.Status != InterviewScheduled {
		t.Fatalf("status = %q, want %q", iv.Status, InterviewScheduled)
	}
	if iv.Format != FormatVideo {
		t.Fatalf("format = %q, want default %q", iv.Format, FormatVideo)
	}

	list, err := svc.ListInterviews(ctx, "app-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("interviews = %d, want 1", len(list))
	}
}

func TestScheduleRejectsUnknownApplication(t *testing.T) {
	svc := newTestService("app-1")

	_, err := svc.Schedule(context.Background(), Interview{
		ApplicationID: "ghost",
		InterviewerID: "admin-1",
		ScheduledAt:   time.Now().Add(48 * time.Hour),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestScheduleRequiresScheduledAt(t *testing.T) {
	svc := newTestService("app-1")

	_, err := svc.Schedule(context.Background(), Interview{
		ApplicationID: "app-1",
		InterviewerID: "admin-1",
	})
	if err == nil {
		t.Fatal("expected error for missing scheduledAt")
	}
}

func TestCompleteRecordsOutcome(t *testing.T) {
	svc := newTestService("app-1")
	ctx := context.Background()

	iv, err := svc.Schedule(ctx, Interview{
		ApplicationID: "app-1",
		InterviewerID: "admin-1",
		ScheduledAt:   time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	started := time.Now().Add(-time.Hour)
	ended := time.Now()
	done, err := svc.Complete(ctx, iv.ID, started, ended, map[string]float64{"teaching": 8.5}, true, "solid walkthrough")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != InterviewCompleted {
		t.Fatalf("status = %q, want %q", done.Status, InterviewCompleted)
	}
	if done.Passed == nil || !*done.Passed {
		t.Fatalf("passed = %v, want true", done.Passed)
	}
	if done.StartedAt == nil || done.EndedAt == nil {
		t.Fatal("actuals not stamped")
	}

	if _, err := svc.Complete(ctx, iv.ID, started, ended, nil, true, ""); err == nil {
		t.Fatal("expected error completing twice")
	}
}
