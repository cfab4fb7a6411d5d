package documents

import (
	"context"
	"errors"
	"testing"
)

// stubGuard pins the owner and status an application reports.
type stubGuard struct {
	owner  string
	status string
	err    error
}

func (g stubGuard) OwnerOf(context.Context, string) (string, string, error) {
	return g.owner, g.status, g.err
}

type countingRefresher struct {
	calls int
}

func (r *countingRefresher) RefreshProgress(context.Context, string) error {
	r.calls++
	return nil
}

func validMeta() AddMeta {
	return AddMeta{
		DocumentType: TypeResume,
		FileURL:      "https://files.example.com/resume.pdf",
		FileName:     "resume.pdf",
		SizeBytes:    120_000,
		MimeType:     "application/pdf",
	}
}

func TestAddAttachesAndRefreshesScore(t *testing.T) {
	refresher := &countingRefresher{}
	svc := NewService(NewMemoryRepo(), stubGuard{owner: "u1", status: "DRAFT"}, refresher)

	doc, err := svc.Add(context.Background(), "u1", "app-1", validMeta())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if doc.VerificationStatus != StatusDraft {
		t.Fatalf("status = %q", doc.VerificationStatus)
	}
	if doc.ID == "" {
		t.Fatal("id not assigned")
	}
	if refresher.calls != 1 {
		t.Fatalf("refresh calls = %d, want 1", refresher.calls)
	}

	count, err := svc.CountByApplication(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d", count)
	}
}

func TestAddRejectsUnknownType(t *testing.T) {
	svc := NewService(NewMemoryRepo(), stubGuard{owner: "u1", status: "DRAFT"}, nil)

	meta := validMeta()
	meta.DocumentType = "SELFIE"
	if _, err := svc.Add(context.Background(), "u1", "app-1", meta); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestAddRequiresFileName(t *testing.T) {
	svc := NewService(NewMemoryRepo(), stubGuard{owner: "u1", status: "DRAFT"}, nil)

	meta := validMeta()
	meta.FileName = "  "
	if _, err := svc.Add(context.Background(), "u1", "app-1", meta); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestAddAfterSubmissionConflicts(t *testing.T) {
	svc := NewService(NewMemoryRepo(), stubGuard{owner: "u1", status: "SUBMITTED"}, nil)

	if _, err := svc.Add(context.Background(), "u1", "app-1", validMeta()); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestAddForeignApplicationReadsAsNotFound(t *testing.T) {
	svc := NewService(NewMemoryRepo(), stubGuard{owner: "someone-else", status: "DRAFT"}, nil)

	if _, err := svc.Add(context.Background(), "u1", "app-1", validMeta()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoveDetachesAndRefreshes(t *testing.T) {
	refresher := &countingRefresher{}
	svc := NewService(NewMemoryRepo(), stubGuard{owner: "u1", status: "DRAFT"}, refresher)
	ctx := context.Background()

	doc, err := svc.Add(ctx, "u1", "app-1", validMeta())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(ctx, "u1", "app-1", doc.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if refresher.calls != 2 {
		t.Fatalf("refresh calls = %d, want 2", refresher.calls)
	}

	count, _ := svc.CountByApplication(ctx, "app-1")
	if count != 0 {
		t.Fatalf("count = %d after remove", count)
	}
}

func TestRemoveWrongApplicationIsNotFound(t *testing.T) {
	svc := NewService(NewMemoryRepo(), stubGuard{owner: "u1", status: "DRAFT"}, nil)
	ctx := context.Background()

	doc, err := svc.Add(ctx, "u1", "app-1", validMeta())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(ctx, "u1", "app-2", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReviewRecordsVerdict(t *testing.T) {
	svc := NewService(NewMemoryRepo(), stubGuard{owner: "u1", status: "DRAFT"}, nil)
	ctx := context.Background()

	doc, err := svc.Add(ctx, "u1", "app-1", validMeta())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	reviewed, err := svc.Review(ctx, doc.ID, "admin-1", StatusApproved, "clear scan")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.VerificationStatus != StatusApproved || reviewed.ReviewerID != "admin-1" {
		t.Fatalf("reviewed = %+v", reviewed)
	}
	if reviewed.ReviewedAt == nil {
		t.Fatal("reviewedAt not stamped")
	}

	if _, err := svc.Review(ctx, doc.ID, "admin-1", "DRAFT", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad status err = %v, want ErrValidation", err)
	}
	if _, err := svc.Review(ctx, doc.ID, "", StatusApproved, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing reviewer err = %v, want ErrValidation", err)
	}
}
