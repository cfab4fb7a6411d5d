package documents

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"instructor-backend/internal/shared/server/middleware"
	"instructor-backend/internal/shared/server/respond"
)

// Handler serves document attachment routes.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications/:id/documents", h.add)
	rg.GET("/applications/:id/documents", h.list)
	rg.DELETE("/applications/:id/documents/:documentId", h.remove)
}

// RegisterAdminRoutes registers the per-document review route on the
// admin-gated group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:documentId/review", h.review)
}

func (h *Handler) add(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	var meta AddMeta
	if err := c.ShouldBindJSON(&meta); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	doc, err := h.Svc.Add(c.Request.Context(), userID, c.Param("id"), meta)
	if err != nil {
		h.writeError(c, err, "failed to add document")
		return
	}
	respond.JSON(c, http.StatusCreated, doc)
}

func (h *Handler) list(c *gin.Context) {
	applicationID := c.Param("id")
	if middleware.RoleFromContext(c) != middleware.RoleAdmin {
		userID := middleware.UserIDFromContext(c)
		ownerID, _, err := h.Svc.Apps.OwnerOf(c.Request.Context(), applicationID)
		if err != nil || ownerID != userID {
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
			return
		}
	}

	docs, err := h.Svc.List(c.Request.Context(), applicationID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}
	if docs == nil {
		docs = []Document{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"documents": docs})
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	err := h.Svc.Remove(c.Request.Context(), userID, c.Param("id"), c.Param("documentId"))
	if err != nil {
		h.writeError(c, err, "failed to delete document")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true, "message": "document deleted"})
}

type reviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h *Handler) review(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	reviewerID := middleware.UserIDFromContext(c)
	doc, err := h.Svc.Review(c.Request.Context(), c.Param("documentId"), reviewerID, req.Status, req.Notes)
	if err != nil {
		h.writeError(c, err, "failed to review document")
		return
	}
	respond.JSON(c, http.StatusOK, doc)
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document or application not found", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "invalid_state", "application no longer accepts document changes", nil)
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
