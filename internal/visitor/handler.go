package visitor

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webstack-ceo/backend/internal/analytics"
	"webstack-ceo/backend/internal/server/middleware"
)

// Handler exposes the tracking endpoints. Tracking writes are best-effort:
// failures are logged and the client still gets 200 so a database blip never
// breaks the site being tracked.
type Handler struct {
	svc     *Service
	emitter analytics.EventEmitter
	log     *zap.Logger
}

// NewHandler returns a visitor handler. emitter may be nil (analytics disabled).
func NewHandler(svc *Service, emitter analytics.EventEmitter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, emitter: emitter, log: log}
}

// Register mounts the tracking routes. /track is public (called from any
// visitor's browser); /visitors/live requires auth (dashboard only).
func (h *Handler) Register(public, private *gin.RouterGroup) {
	public.POST("/track", h.track)
	private.GET("/visitors/live", h.listLive)
}

type trackRequest struct {
	Action    string `json:"action"` // "session", "heartbeat", or "pageview"
	SessionID string `json:"session_id"`
	Domain    string `json:"domain"`
	Path      string `json:"path"`
	Referrer  string `json:"referrer"`
}

func (h *Handler) track(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ctx := c.Request.Context()
	userID, _ := middleware.GetUserID(ctx)

	var err error
	switch req.Action {
	case "session", "":
		err = h.svc.Track(ctx, req.SessionID, req.Domain, userID, req.Path, req.Referrer, c.Request.UserAgent())
		if err == nil {
			analytics.EmitAsync(h.emitter, ctx, analytics.NewEvent("session_start", req.Domain, userID, req.SessionID, nil))
		}
	case "heartbeat":
		err = h.svc.Heartbeat(ctx, req.SessionID)
	case "pageview":
		err = h.svc.PageView(ctx, req.SessionID, req.Domain, req.Path, req.Referrer)
		if err == nil {
			analytics.EmitAsync(h.emitter, ctx, analytics.NewEvent("page_view", req.Domain, userID, req.SessionID, map[string]string{"path": req.Path}))
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
		return
	}
	if err != nil {
		if errors.Is(err, ErrMissingSession) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Swallow storage failures: tracking must not block the page.
		h.log.Warn("track write failed", zap.String("action", req.Action), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) listLive(c *gin.Context) {
	dom := c.Query("domain")
	self := c.Query("session_id")
	visitors, err := h.svc.ListLive(c.Request.Context(), dom, self)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"visitors": visitors, "count": len(visitors)})
}
