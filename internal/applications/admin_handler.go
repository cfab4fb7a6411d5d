package applications

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"instructor-backend/internal/shared/server/middleware"
	"instructor-backend/internal/shared/server/respond"
)

// AdminHandler serves the review and decision routes. The route group it
// registers on is already gated to the ADMIN role.
type AdminHandler struct {
	Svc       *Service
	Decisions *DecisionService
}

func NewAdminHandler(svc *Service, decisions *DecisionService) *AdminHandler {
	return &AdminHandler{Svc: svc, Decisions: decisions}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/applications", h.list)
	rg.GET("/applications/stats", h.stats)
	rg.POST("/applications/:id/start-review", h.startReview)
	rg.POST("/applications/:id/approve", h.approve)
	rg.POST("/applications/:id/reject", h.reject)
	rg.POST("/applications/:id/request-info", h.requestInfo)
	rg.POST("/applications/:id/review", h.recordReview)
}

func (h *AdminHandler) list(c *gin.Context) {
	filter := ListFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if v := c.Query("minScore"); v != "" {
		score, err := strconv.Atoi(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "minScore must be an integer", nil)
			return
		}
		filter.MinScore = score
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "from must be RFC3339", nil)
			return
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "to must be RFC3339", nil)
			return
		}
		filter.To = &t
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	apps, total, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to list applications", nil)
		return
	}
	if apps == nil {
		apps = []*Application{}
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"items":  apps,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (h *AdminHandler) stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to compute stats", nil)
		return
	}
	respond.JSON(c, http.StatusOK, stats)
}

func (h *AdminHandler) startReview(c *gin.Context) {
	reviewerID := middleware.UserIDFromContext(c)
	app, err := h.Decisions.StartReview(c.Request.Context(), c.Param("id"), reviewerID)
	if err != nil {
		h.writeError(c, err, "failed to start review")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"success":     true,
		"message":     "review started",
		"application": app,
	})
}

type approveRequest struct {
	Notes  string      `json:"notes"`
	Review ReviewInput `json:"review"`
}

func (h *AdminHandler) approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	reviewerID := middleware.UserIDFromContext(c)
	app, err := h.Decisions.Approve(c.Request.Context(), c.Param("id"), reviewerID, req.Notes, req.Review)
	if err != nil {
		h.writeError(c, err, "failed to approve application")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"success":     true,
		"message":     "application approved",
		"application": app,
	})
}

type rejectRequest struct {
	Reason               string      `json:"reason"`
	RequiresResubmission bool        `json:"requiresResubmission"`
	Review               ReviewInput `json:"review"`
}

func (h *AdminHandler) reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "reason is required", []map[string]string{
			{"field": "reason", "issue": "required"},
		})
		return
	}

	reviewerID := middleware.UserIDFromContext(c)
	app, err := h.Decisions.Reject(c.Request.Context(), c.Param("id"), reviewerID, req.Reason, req.RequiresResubmission, req.Review)
	if err != nil {
		h.writeError(c, err, "failed to reject application")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"success":     true,
		"message":     "decision recorded",
		"application": app,
	})
}

type requestInfoRequest struct {
	RequiredInfo []string   `json:"requiredInfo"`
	Deadline     *time.Time `json:"deadline"`
}

func (h *AdminHandler) requestInfo(c *gin.Context) {
	var req requestInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	reviewerID := middleware.UserIDFromContext(c)
	app, err := h.Decisions.RequestMoreInfo(c.Request.Context(), c.Param("id"), reviewerID, req.RequiredInfo, req.Deadline)
	if err != nil {
		h.writeError(c, err, "failed to request more information")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"success":     true,
		"message":     "more information requested",
		"application": app,
	})
}

type recordReviewRequest struct {
	Decision string      `json:"decision"`
	Reason   string      `json:"reason"`
	Review   ReviewInput `json:"review"`
}

func (h *AdminHandler) recordReview(c *gin.Context) {
	var req recordReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	reviewerID := middleware.UserIDFromContext(c)
	review, err := h.Decisions.RecordReview(c.Request.Context(), c.Param("id"), reviewerID, req.Decision, req.Reason, req.Review)
	if err != nil {
		h.writeError(c, err, "failed to record review")
		return
	}
	respond.JSON(c, http.StatusOK, review)
}

func (h *AdminHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, ErrorCodeInvalidState, "application is not in a state that allows this decision", nil)
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, fallback, nil)
	}
}
