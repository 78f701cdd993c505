package bron

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"webstack-ceo/backend/internal/platform/plan"
)

// reportTier is the minimum plan that may pull SEO reports and content feeds.
const reportTier = "starter"

// Handler exposes the report and content endpoints. All routes require auth
// and a paid plan.
type Handler struct {
	svc   *Service
	tiers plan.TierGetter
}

// NewHandler returns a bron handler backed by svc, gating routes on tiers.
func NewHandler(svc *Service, tiers plan.TierGetter) *Handler {
	return &Handler{svc: svc, tiers: tiers}
}

// Register mounts the bron routes on the given (authenticated) group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.POST("/seo/report", h.report)
	g.POST("/seo/content", h.content)
}

type domainRequest struct {
	Domain string `json:"domain"`
}

// requireTier resolves the caller's plan and writes the error response itself.
// Returns false when the request has already been answered.
func (h *Handler) requireTier(c *gin.Context) bool {
	if _, err := plan.RequireTier(c.Request.Context(), h.tiers, reportTier); err != nil {
		switch {
		case errors.Is(err, plan.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, plan.ErrTierRequired):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "plan lookup failed"})
		}
		return false
	}
	return true
}

func (h *Handler) report(c *gin.Context) {
	if !h.requireTier(c) {
		return
	}
	var req domainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	report, err := h.svc.FetchAll(c.Request.Context(), req.Domain)
	if err != nil {
		if errors.Is(err, ErrMissingDomain) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) content(c *gin.Context) {
	if !h.requireTier(c) {
		return
	}
	var req domainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	articles, err := h.svc.FetchContent(c.Request.Context(), req.Domain)
	if err != nil {
		if errors.Is(err, ErrMissingDomain) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "content fetch failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}
