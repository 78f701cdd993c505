package sitemeta

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler exposes the site preview endpoint. Public: used on the marketing
// site before signup.
type Handler struct {
	svc *Service
}

// NewHandler returns a sitemeta handler backed by svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the preview route on the given group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.POST("/site/preview", h.preview)
}

type previewRequest struct {
	URL string `json:"url"`
}

func (h *Handler) preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	preview, err := h.svc.Fetch(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, ErrMissingURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "preview failed"})
		return
	}
	c.JSON(http.StatusOK, preview)
}
