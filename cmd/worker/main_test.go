package main

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/gin-gonic/gin"

	"instructor-backend/internal/applications"
	"instructor-backend/internal/bootstrap"
	"instructor-backend/internal/documents"
	"instructor-backend/internal/queue"
	"instructor-backend/internal/shared/config"
	"instructor-backend/internal/users"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	_ = ctx
	_ = params
	_ = optFns
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	_ = ctx
	_ = optFns
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func newTestWorkerApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app, err := bootstrap.Build(config.Config{Port: "0", Env: "dev"})
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

// pendingVerification submits a complete application and triggers
// verification so the queue message has a real target.
func pendingVerification(t *testing.T, app *bootstrap.App, userID string) string {
	t.Helper()
	ctx := context.Background()

	draft, err := app.AppsSvc.Create(ctx, users.User{ID: userID, Email: userID + "@example.com"})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	_, err = app.AppsSvc.SaveDraft(ctx, userID, draft.ID, applications.DraftUpdate{
		PersonalInfo:           &applications.PersonalInfo{FullName: "Dana Cole", PhoneNumber: "+15550100", LanguagesSpoken: []string{"English"}},
		ProfessionalBackground: &applications.ProfessionalBackground{CurrentJobTitle: "Engineer", YearsOfExperience: 8},
		TeachingInformation:    &applications.TeachingInformation{SubjectsToTeach: []string{"Go"}, TeachingExperience: 3},
	})
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if _, err := app.DocumentsSvc.Add(ctx, userID, draft.ID, documents.AddMeta{
		DocumentType: documents.TypeIdentityDocument,
		FileName:     "passport.pdf",
	}); err != nil {
		t.Fatalf("add document: %v", err)
	}
	if _, err := app.AppsSvc.Submit(ctx, userID, draft.ID, applications.Consents{TermsAccepted: true, DataProcessingConsent: true}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	verification, err := app.VerifySvc.Trigger(ctx, draft.ID)
	if err != nil {
		t.Fatalf("trigger verification: %v", err)
	}
	return verification.ID
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	app := newTestWorkerApp(t)
	client := &fakeSQS{}
	verificationID := pendingVerification(t, app, "worker-u1")

	body, err := queue.EncodeMessage(queue.Message{VerificationID: verificationID, RequestID: "req-1"})
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	msg := sqstypes.Message{
		MessageId:     aws.String("m1"),
		ReceiptHandle: aws.String("r1"),
		Body:          aws.String(string(body)),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}

	handleMessage(context.Background(), app, client, "queue", msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}

func TestWorkerDoesNotDeleteOnProcessFailure(t *testing.T) {
	app := newTestWorkerApp(t)
	client := &fakeSQS{}

	body, err := queue.EncodeMessage(queue.Message{VerificationID: "does-not-exist", RequestID: "req-2"})
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	msg := sqstypes.Message{
		MessageId:     aws.String("m2"),
		ReceiptHandle: aws.String("r2"),
		Body:          aws.String(string(body)),
	}

	handleMessage(context.Background(), app, client, "queue", msg)

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnInvalidJSON(t *testing.T) {
	app := newTestWorkerApp(t)
	client := &fakeSQS{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m3"),
		ReceiptHandle: aws.String("r3"),
		Body:          aws.String("{bad-json"),
	}

	handleMessage(context.Background(), app, client, "queue", msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnEmptyBody(t *testing.T) {
	app := newTestWorkerApp(t)
	client := &fakeSQS{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m4"),
		ReceiptHandle: aws.String("r4"),
		Body:          aws.String("   "),
	}

	handleMessage(context.Background(), app, client, "queue", msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}
