package applications_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"instructor-backend/internal/bootstrap"
	"instructor-backend/internal/shared/config"
)

func newTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		Env:             "dev",
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func asUser(req *http.Request, userID, role string) {
	req.Header.Set("X-User-Id", userID)
	req.Header.Set("X-User-Role", role)
}

func doJSON(t *testing.T, router http.Handler, method, path, userID, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	asUser(req, userID, role)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func fullDraftBody() map[string]any {
	return map[string]any{
		"personalInfo": map[string]any{
			"fullName":        "Dana Cole",
			"phoneNumber":     "+15550100",
			"nationality":     "NL",
			"languagesSpoken": []string{"English"},
		},
		"professionalBackground": map[string]any{
			"currentJobTitle":   "Engineer",
			"yearsOfExperience": 6,
			"education": []map[string]any{
				{"degree": "BSc", "institution": "TU Delft", "year": 2015},
			},
		},
		"teachingInformation": map[string]any{
			"subjectsToTeach":         []string{"Go"},
			"teachingExperienceYears": 2,
		},
	}
}

func TestApplicationLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	router := app.Router

	// missing identity is rejected outright
	anon := httptest.NewRequest(http.MethodPost, "/api/v1/applications", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: %d", resp.Code)
	}

	// create
	resp = doJSON(t, router, http.MethodPost, "/api/v1/applications", "u1", "STUDENT", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: %d body=%s", resp.Code, resp.Body.String())
	}
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.Status != "DRAFT" || created.ID == "" {
		t.Fatalf("created = %+v", created)
	}

	// second create conflicts
	resp = doJSON(t, router, http.MethodPost, "/api/v1/applications", "u1", "STUDENT", nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate create: %d", resp.Code)
	}

	// draft save
	resp = doJSON(t, router, http.MethodPut, "/api/v1/applications/"+created.ID+"/draft", "u1", "STUDENT", fullDraftBody())
	if resp.Code != http.StatusOK {
		t.Fatalf("save draft: %d body=%s", resp.Code, resp.Body.String())
	}
	var drafted struct {
		CompletionScore int `json:"completionScore"`
		CurrentStep     int `json:"currentStep"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&drafted); err != nil {
		t.Fatalf("decode draft: %v", err)
	}
	if drafted.CompletionScore != 75 || drafted.CurrentStep != 3 {
		t.Fatalf("progress = %+v", drafted)
	}

	// submit without consents fails and leaves the draft editable
	resp = doJSON(t, router, http.MethodPost, "/api/v1/applications/"+created.ID+"/submit", "u1", "STUDENT", map[string]any{
		"consents": map[string]any{"termsAccepted": true},
	})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("submit without consents: %d", resp.Code)
	}

	// submit
	resp = doJSON(t, router, http.MethodPost, "/api/v1/applications/"+created.ID+"/submit", "u1", "STUDENT", map[string]any{
		"consents": map[string]any{"termsAccepted": true, "dataProcessingConsent": true},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("submit: %d body=%s", resp.Code, resp.Body.String())
	}

	// owner reads their application back
	resp = doJSON(t, router, http.MethodGet, "/api/v1/applications/me", "u1", "STUDENT", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("get mine: %d", resp.Code)
	}
	var mine struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&mine); err != nil {
		t.Fatalf("decode mine: %v", err)
	}
	if mine.Status != "SUBMITTED" {
		t.Fatalf("status = %q", mine.Status)
	}

	// another user cannot see it
	resp = doJSON(t, router, http.MethodGet, "/api/v1/applications/"+created.ID, "u2", "STUDENT", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("foreign read: %d", resp.Code)
	}

	// admin claims and approves
	resp = doJSON(t, router, http.MethodPost, "/api/v1/admin/applications/"+created.ID+"/start-review", "admin-1", "ADMIN", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("start review: %d body=%s", resp.Code, resp.Body.String())
	}
	resp = doJSON(t, router, http.MethodPost, "/api/v1/admin/applications/"+created.ID+"/approve", "admin-1", "ADMIN", map[string]any{
		"notes": "strong profile",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("approve: %d body=%s", resp.Code, resp.Body.String())
	}

	// approval published an instructor profile
	resp = doJSON(t, router, http.MethodGet, "/api/v1/instructors/u1", "u2", "STUDENT", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("instructor profile: %d body=%s", resp.Code, resp.Body.String())
	}
	var profile struct {
		IsVerified bool     `json:"isVerified"`
		Expertise  []string `json:"expertise"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if !profile.IsVerified || len(profile.Expertise) == 0 {
		t.Fatalf("profile = %+v", profile)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app.Router, http.MethodGet, "/api/v1/admin/applications", "u1", "STUDENT", nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("student on admin route: %d", resp.Code)
	}

	resp = doJSON(t, app.Router, http.MethodGet, "/api/v1/admin/applications", "admin-1", "ADMIN", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("admin listing: %d body=%s", resp.Code, resp.Body.String())
	}
	var listing struct {
		Items []json.RawMessage `json:"items"`
		Total int               `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Items == nil {
		t.Fatal("items must be an empty array, not null")
	}
}

func TestAdminStatsEmptyDataset(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app.Router, http.MethodGet, "/api/v1/admin/applications/stats", "admin-1", "ADMIN", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("stats: %d body=%s", resp.Code, resp.Body.String())
	}
	var stats struct {
		Total              int            `json:"total"`
		ByStatus           map[string]int `json:"byStatus"`
		AverageReviewHours float64        `json:"averageReviewHours"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 0 || stats.AverageReviewHours != 0 {
		t.Fatalf("stats = %+v, want zeros", stats)
	}
}

func TestReopenFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	router := app.Router

	resp := doJSON(t, router, http.MethodPost, "/api/v1/applications", "u1", "STUDENT", nil)
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	doJSON(t, router, http.MethodPut, "/api/v1/applications/"+created.ID+"/draft", "u1", "STUDENT", fullDraftBody())
	doJSON(t, router, http.MethodPost, "/api/v1/applications/"+created.ID+"/submit", "u1", "STUDENT", map[string]any{
		"consents": map[string]any{"termsAccepted": true, "dataProcessingConsent": true},
	})

	// reopening a submitted application is rejected
	resp = doJSON(t, router, http.MethodPost, "/api/v1/applications/"+created.ID+"/reopen", "u1", "STUDENT", nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("reopen submitted: %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/admin/applications/"+created.ID+"/request-info", "admin-1", "ADMIN", map[string]any{
		"requiredInfo": []string{"teaching certificate"},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("request info: %d body=%s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/applications/"+created.ID+"/reopen", "u1", "STUDENT", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("reopen: %d body=%s", resp.Code, resp.Body.String())
	}
	var reopened struct {
		Application struct {
			Status string `json:"status"`
		} `json:"application"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reopened); err != nil {
		t.Fatalf("decode reopen: %v", err)
	}
	if reopened.Application.Status != "DRAFT" {
		t.Fatalf("status after reopen = %q", reopened.Application.Status)
	}
}
