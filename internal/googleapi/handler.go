package googleapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"webstack-ceo/backend/internal/server/middleware"
)

// Handler exposes the Google report proxies. All routes require auth.
type Handler struct {
	client *Client
}

// NewHandler returns a googleapi handler backed by client.
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// Register mounts the report routes on the given (authenticated) group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.POST("/google/analytics/report", h.analytics)
	g.POST("/google/ads/report", h.ads)
}

type reportRequest struct {
	PropertyID string `json:"property_id"`
	CustomerID string `json:"customer_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// defaultRange covers the trailing 28 days when the request omits dates.
func (r *reportRequest) defaultRange() {
	if r.EndDate == "" {
		r.EndDate = time.Now().UTC().Format("2006-01-02")
	}
	if r.StartDate == "" {
		end, err := time.Parse("2006-01-02", r.EndDate)
		if err != nil {
			end = time.Now().UTC()
		}
		r.StartDate = end.AddDate(0, 0, -28).Format("2006-01-02")
	}
}

func writeReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotConnected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "not_connected"})
	case errors.Is(err, ErrReconnectRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "reconnect_required"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "report failed"})
	}
}

func (h *Handler) analytics(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PropertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property_id is required"})
		return
	}
	req.defaultRange()
	userID, _ := middleware.GetUserID(c.Request.Context())
	points, err := h.client.AnalyticsReport(c.Request.Context(), userID, req.PropertyID, req.StartDate, req.EndDate)
	if err != nil {
		writeReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (h *Handler) ads(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CustomerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id is required"})
		return
	}
	req.defaultRange()
	userID, _ := middleware.GetUserID(c.Request.Context())
	points, err := h.client.AdsReport(c.Request.Context(), userID, req.CustomerID, req.StartDate, req.EndDate)
	if err != nil {
		writeReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}
