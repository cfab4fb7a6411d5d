package applications

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"instructor-backend/internal/shared/server/middleware"
	"instructor-backend/internal/shared/server/respond"
	"instructor-backend/internal/users"
)

// Handler serves the owner-facing application routes.
type Handler struct {
	Svc       *Service
	Decisions *DecisionService
}

func NewHandler(svc *Service, decisions *DecisionService) *Handler {
	return &Handler{Svc: svc, Decisions: decisions}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications", h.create)
	rg.GET("/applications/me", h.getMine)
	rg.GET("/applications/:id", h.get)
	rg.PUT("/applications/:id/draft", h.saveDraft)
	rg.POST("/applications/:id/submit", h.submit)
	rg.POST("/applications/:id/reopen", h.reopen)
	rg.DELETE("/applications/:id", h.withdraw)
}

func (h *Handler) create(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	app, err := h.Svc.Create(c.Request.Context(), users.User{
		ID:       userID,
		Email:    middleware.UserEmailFromContext(c),
		FullName: middleware.UserNameFromContext(c),
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			respond.Error(c, http.StatusConflict, ErrorCodeDuplicate, "an application already exists for this user", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to create application", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, app)
}

func (h *Handler) getMine(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	app, err := h.Svc.GetForUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no application found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to fetch application", nil)
		return
	}
	respond.JSON(c, http.StatusOK, app)
}

func (h *Handler) get(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	id := c.Param("id")

	var app *Application
	var err error
	if middleware.RoleFromContext(c) == middleware.RoleAdmin {
		app, err = h.Svc.GetByID(c.Request.Context(), id)
	} else {
		app, err = h.Svc.GetOwned(c.Request.Context(), userID, id)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to fetch application", nil)
		return
	}
	respond.JSON(c, http.StatusOK, app)
}

type draftRequest struct {
	PersonalInfo           *PersonalInfo           `json:"personalInfo"`
	ProfessionalBackground *ProfessionalBackground `json:"professionalBackground"`
	TeachingInformation    *TeachingInformation    `json:"teachingInformation"`
	Documents              map[string]any          `json:"documents"`
	Consents               *Consents               `json:"consents"`
	AutoSave               bool                    `json:"autoSave"`
}

func (h *Handler) saveDraft(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	app, err := h.Svc.SaveDraft(c.Request.Context(), userID, c.Param("id"), DraftUpdate{
		PersonalInfo:           req.PersonalInfo,
		ProfessionalBackground: req.ProfessionalBackground,
		TeachingInformation:    req.TeachingInformation,
		Documents:              req.Documents,
		Consents:               req.Consents,
		AutoSave:               req.AutoSave,
	})
	if err != nil {
		h.writeError(c, err, "failed to save draft")
		return
	}
	respond.JSON(c, http.StatusOK, app)
}

type submitRequest struct {
	Consents Consents `json:"consents"`
}

func (h *Handler) submit(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	app, err := h.Svc.Submit(c.Request.Context(), userID, c.Param("id"), req.Consents)
	if err != nil {
		h.writeError(c, err, "failed to submit application")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"success":     true,
		"message":     "application submitted",
		"application": app,
	})
}

func (h *Handler) reopen(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	app, err := h.Decisions.Reopen(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to reopen application")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"success":     true,
		"message":     "application reopened for resubmission",
		"application": app,
	})
}

func (h *Handler) withdraw(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if err := h.Svc.Withdraw(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err, "failed to withdraw application")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true, "message": "application withdrawn"})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, ErrorCodeInvalidState, "application is not in a state that allows this operation", nil)
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusUnprocessableEntity, ErrorCodeMissingSections, err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, fallback, nil)
	}
}
