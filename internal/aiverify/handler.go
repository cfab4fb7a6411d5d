package aiverify

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"instructor-backend/internal/shared/server/respond"
)

// Handler serves the verification routes on the admin group.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications/:id/verification", h.trigger)
	rg.GET("/applications/:id/verification", h.get)
}

func (h *Handler) trigger(c *gin.Context) {
	v, err := h.Svc.Trigger(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		case errors.Is(err, ErrConflict):
			respond.Error(c, http.StatusConflict, "invalid_state", "application has not been submitted", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to trigger verification", nil)
		}
		return
	}
	respond.JSON(c, http.StatusAccepted, v)
}

func (h *Handler) get(c *gin.Context) {
	v, err := h.Svc.GetByApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no verification for this application", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch verification", nil)
		return
	}
	respond.JSON(c, http.StatusOK, v)
}
