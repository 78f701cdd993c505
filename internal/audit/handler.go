package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auditrepo "webstack-ceo/backend/internal/audit/repository"
	"webstack-ceo/backend/internal/server/middleware"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Handler exposes the signed-in user's account activity.
type Handler struct {
	repo auditrepo.Repository
}

// NewHandler returns an audit handler backed by repo.
func NewHandler(repo auditrepo.Repository) *Handler {
	return &Handler{repo: repo}
}

// Register mounts the audit routes on the given (authenticated) group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.POST("/audit/list", h.list)
}

type listRequest struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (h *Handler) list(c *gin.Context) {
	var req listRequest
	_ = c.ShouldBindJSON(&req) // empty body means first page
	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}
	if req.Limit > maxListLimit {
		req.Limit = maxListLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	userID, _ := middleware.GetUserID(c.Request.Context())
	logs, err := h.repo.ListByUser(c.Request.Context(), userID, req.Limit, req.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing activity failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": logs})
}
