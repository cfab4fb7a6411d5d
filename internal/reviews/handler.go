package reviews

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"instructor-backend/internal/shared/server/middleware"
	"instructor-backend/internal/shared/server/respond"
)

// Handler serves review reads and interview scheduling on the admin group.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/applications/:id/review", h.getReview)
	rg.GET("/applications/:id/review/history", h.history)
	rg.GET("/applications/:id/interviews", h.listInterviews)
	rg.POST("/applications/:id/interviews", h.schedule)
	rg.POST("/interviews/:interviewId/complete", h.complete)
}

func (h *Handler) getReview(c *gin.Context) {
	review, err := h.Svc.GetByApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no review recorded", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch review", nil)
		return
	}
	respond.JSON(c, http.StatusOK, review)
}

func (h *Handler) history(c *gin.Context) {
	events, err := h.Svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch review history", nil)
		return
	}
	if events == nil {
		events = []Event{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"events": events})
}

func (h *Handler) listInterviews(c *gin.Context) {
	interviews, err := h.Svc.ListInterviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list interviews", nil)
		return
	}
	if interviews == nil {
		interviews = []Interview{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"interviews": interviews})
}

type scheduleRequest struct {
	ScheduledAt      time.Time `json:"scheduledAt"`
	Format           string    `json:"format"`
	MeetingLink      string    `json:"meetingLink"`
	RecordingConsent bool      `json:"recordingConsent"`
}

func (h *Handler) schedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	iv, err := h.Svc.Schedule(c.Request.Context(), Interview{
		ApplicationID:    c.Param("id"),
		InterviewerID:    middleware.UserIDFromContext(c),
		ScheduledAt:      req.ScheduledAt,
		Format:           req.Format,
		MeetingLink:      req.MeetingLink,
		RecordingConsent: req.RecordingConsent,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.JSON(c, http.StatusCreated, iv)
}

type completeRequest struct {
	StartedAt time.Time          `json:"startedAt"`
	EndedAt   time.Time          `json:"endedAt"`
	Scores    map[string]float64 `json:"scores"`
	Passed    bool               `json:"passed"`
	Feedback  string             `json:"feedback"`
}

func (h *Handler) complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	iv, err := h.Svc.Complete(c.Request.Context(), c.Param("interviewId"), req.StartedAt, req.EndedAt, req.Scores, req.Passed, req.Feedback)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "interview not found", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.JSON(c, http.StatusOK, iv)
}
