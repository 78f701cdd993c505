package profile

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"webstack-ceo/backend/internal/audit"
	"webstack-ceo/backend/internal/server/middleware"
)

// Handler exposes the profile endpoints. All routes require auth.
type Handler struct {
	svc         *Service
	auditLogger audit.AuditLogger
}

// NewHandler returns a profile handler. auditLogger may be nil.
func NewHandler(svc *Service, auditLogger audit.AuditLogger) *Handler {
	return &Handler{svc: svc, auditLogger: auditLogger}
}

// Register mounts the profile routes on the given (authenticated) group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.POST("/profile/get", h.get)
	g.POST("/profile/update", h.update)
	g.POST("/profile/tier", h.tier)
}

func (h *Handler) get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	p, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile lookup failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, _ := middleware.GetUserID(c.Request.Context())
	p, err := h.svc.Update(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrInvalidWebsite):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile update failed"})
		}
		return
	}
	if h.auditLogger != nil {
		h.auditLogger.LogEvent(c.Request.Context(), userID, "profile_update", "user", "")
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) tier(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	tier, err := h.svc.GetTier(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tier lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tier": tier})
}
