package aiverify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ScoringInput is the feature projection handed to the scorer. It carries no
// file bytes; the scorer sees metadata only.
type ScoringInput struct {
	ApplicationID      string         `json:"applicationId"`
	CompletionScore    int            `json:"completionScore"`
	YearsOfExperience  int            `json:"yearsOfExperience"`
	TeachingExperience int            `json:"teachingExperienceYears"`
	SubjectsToTeach    []string       `json:"subjectsToTeach"`
	MotivationLength   int            `json:"motivationLength"`
	LanguagesSpoken    []string       `json:"languagesSpoken"`
	EducationCount     int            `json:"educationCount"`
	CertificationCount int            `json:"certificationCount"`
	DocumentsByType    map[string]int `json:"documentsByType"`
}

// Result is a completed scoring run.
type Result struct {
	Identity        float64 `json:"identityScore"`
	Education       float64 `json:"educationScore"`
	Experience      float64 `json:"experienceScore"`
	ContentQuality  float64 `json:"contentQualityScore"`
	Language        float64 `json:"languageScore"`
	Professionalism float64 `json:"professionalismScore"`
	Overall         float64 `json:"overallScore"`
	Recommendation  string  `json:"recommendation"`
	Provider        string  `json:"provider"`
}

// Scorer produces a screening result for an application.
type Scorer interface {
	Score(ctx context.Context, input ScoringInput) (Result, error)
}

// HeuristicScorer is the built-in provider. Deterministic and offline, used
// when no external scorer is configured.
type HeuristicScorer struct{}

func (HeuristicScorer) Score(_ context.Context, input ScoringInput) (Result, error) {
	res := Result{Provider: "heuristic"}

	res.Identity = 40
	if input.DocumentsByType["IDENTITY_DOCUMENT"] > 0 {
		res.Identity = 90
	}

	res.Education = clamp(30+20*float64(input.EducationCount)+10*float64(input.DocumentsByType["EDUCATION_CERTIFICATE"]), 0, 100)

	exp := float64(input.YearsOfExperience)*6 + float64(input.TeachingExperience)*8
	res.Experience = clamp(20+exp, 0, 100)

	content := float64(input.CompletionScore)
	if input.MotivationLength >= 200 {
		content += 10
	}
	res.ContentQuality = clamp(content, 0, 100)

	res.Language = clamp(50+25*float64(len(input.LanguagesSpoken)), 0, 100)

	prof := 30 + 15*float64(input.CertificationCount) + 20*float64(input.DocumentsByType["PROFESSIONAL_CERTIFICATION"]+input.DocumentsByType["TEACHING_CERTIFICATE"])
	res.Professionalism = clamp(prof, 0, 100)

	res.Overall = (res.Identity + res.Education + res.Experience + res.ContentQuality + res.Language + res.Professionalism) / 6
	res.Recommendation = recommend(res.Overall)
	return res, nil
}

// HTTPScorer calls an external scoring service. The request is bounded by the
// client timeout; callers treat errors as a soft failure.
type HTTPScorer struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPScorer(baseURL string) *HTTPScorer {
	return &HTTPScorer{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPScorer) Score(ctx context.Context, input ScoringInput) (Result, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return Result{}, fmt.Errorf("encode scoring input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/v1/score", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("scorer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("scorer returned status %d", resp.StatusCode)
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("decode scorer response: %w", err)
	}
	if res.Provider == "" {
		res.Provider = "http"
	}
	if res.Recommendation == "" {
		res.Recommendation = recommend(res.Overall)
	}
	return res, nil
}

func recommend(overall float64) string {
	switch {
	case overall >= 75:
		return RecommendApprove
	case overall < 40:
		return RecommendReject
	default:
		return RecommendManualReview
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
