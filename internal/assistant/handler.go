package assistant

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"webstack-ceo/backend/internal/analytics"
	"webstack-ceo/backend/internal/server/middleware"
)

// Handler exposes the assistant endpoints. All routes require auth.
type Handler struct {
	svc     *Service
	emitter analytics.EventEmitter
}

// NewHandler returns an assistant handler. emitter may be nil.
func NewHandler(svc *Service, emitter analytics.EventEmitter) *Handler {
	return &Handler{svc: svc, emitter: emitter}
}

// Register mounts the assistant routes on the given (authenticated) group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.POST("/assistant/ask", h.ask)
	g.POST("/assistant/usage", h.usage)
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, _ := middleware.GetUserID(c.Request.Context())
	ans, err := h.svc.Ask(c.Request.Context(), userID, req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyPrompt):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrQuotaExceeded):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "assistant request failed"})
		}
		return
	}
	analytics.EmitAsync(h.emitter, c.Request.Context(),
		analytics.NewEvent("assistant_used", "", userID, "", nil))
	c.JSON(http.StatusOK, ans)
}

func (h *Handler) usage(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	ans, err := h.svc.Usage(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "usage lookup failed"})
		return
	}
	c.JSON(http.StatusOK, ans)
}
