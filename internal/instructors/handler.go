package instructors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"instructor-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/instructors/:userId", h.get)
}

func (h *Handler) get(c *gin.Context) {
	profile, err := h.Svc.GetByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "instructor profile not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch instructor profile", nil)
		return
	}
	respond.JSON(c, http.StatusOK, profile)
}
