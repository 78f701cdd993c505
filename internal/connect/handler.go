package connect

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"webstack-ceo/backend/internal/audit"
	"webstack-ceo/backend/internal/connect/domain"
	"webstack-ceo/backend/internal/server/middleware"
)

// Handler exposes the OAuth connect endpoints. All routes require auth.
type Handler struct {
	svc         *Service
	auditLogger audit.AuditLogger
}

// NewHandler returns a connect handler backed by svc. auditLogger may be nil.
func NewHandler(svc *Service, auditLogger audit.AuditLogger) *Handler {
	return &Handler{svc: svc, auditLogger: auditLogger}
}

// Register mounts the connect routes on the given (authenticated) group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.POST("/connect/url", h.authURL)
	g.POST("/connect/exchange", h.exchange)
	g.POST("/connect/list", h.list)
	g.POST("/connect/disconnect", h.disconnect)
}

type authURLRequest struct {
	Provider string `json:"provider"`
	State    string `json:"state"`
}

func (h *Handler) authURL(c *gin.Context) {
	var req authURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	url, err := h.svc.AuthURL(domain.Provider(req.Provider), req.State)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrProviderNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

type exchangeRequest struct {
	Provider string `json:"provider"`
	Code     string `json:"code"`
}

type connectionView struct {
	Provider  string `json:"provider"`
	Service   string `json:"service"`
	Connected bool   `json:"connected"`
	UpdatedAt string `json:"updated_at"`
}

func viewConnections(conns []*domain.Connection) []connectionView {
	views := make([]connectionView, 0, len(conns))
	for _, conn := range conns {
		views = append(views, connectionView{
			Provider:  string(conn.Provider),
			Service:   conn.Service,
			Connected: true,
			UpdatedAt: conn.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return views
}

func (h *Handler) exchange(c *gin.Context) {
	var req exchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, _ := middleware.GetUserID(c.Request.Context())
	conns, err := h.svc.Exchange(c.Request.Context(), userID, domain.Provider(req.Provider), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownProvider):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrProviderNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		case errors.Is(err, ErrExchangeFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "exchange failed"})
		}
		return
	}
	if h.auditLogger != nil {
		h.auditLogger.LogEvent(c.Request.Context(), userID, "oauth_connect", "connection", req.Provider)
	}
	c.JSON(http.StatusOK, gin.H{"connections": viewConnections(conns)})
}

func (h *Handler) list(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	conns, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing connections failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": viewConnections(conns)})
}

type disconnectRequest struct {
	Provider string `json:"provider"`
}

func (h *Handler) disconnect(c *gin.Context) {
	var req disconnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, _ := middleware.GetUserID(c.Request.Context())
	if err := h.svc.Disconnect(c.Request.Context(), userID, domain.Provider(req.Provider)); err != nil {
		if errors.Is(err, ErrUnknownProvider) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "disconnect failed"})
		return
	}
	if h.auditLogger != nil {
		h.auditLogger.LogEvent(c.Request.Context(), userID, "oauth_disconnect", "connection", req.Provider)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
