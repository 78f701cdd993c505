package subscription

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"webstack-ceo/backend/internal/analytics"
	"webstack-ceo/backend/internal/audit"
	"webstack-ceo/backend/internal/server/middleware"
)

// maxWebhookBody bounds the raw payload read for signature verification.
const maxWebhookBody = 1 << 20

// Handler exposes checkout, subscription lookup, and the Stripe webhook.
type Handler struct {
	svc         *Service
	auditLogger audit.AuditLogger
	emitter     analytics.EventEmitter
}

// NewHandler returns a subscription handler. auditLogger and emitter may be nil.
func NewHandler(svc *Service, auditLogger audit.AuditLogger, emitter analytics.EventEmitter) *Handler {
	return &Handler{svc: svc, auditLogger: auditLogger, emitter: emitter}
}

// Register mounts the authenticated billing routes and the public webhook.
func (h *Handler) Register(public, private *gin.RouterGroup) {
	private.POST("/billing/checkout", h.checkout)
	private.POST("/billing/subscription", h.get)
	public.POST("/webhooks/stripe", h.webhook)
}

type checkoutRequest struct {
	PriceID string `json:"price_id"`
}

func (h *Handler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, _ := middleware.GetUserID(c.Request.Context())
	session, err := h.svc.CreateCheckoutSession(c.Request.Context(), userID, req.PriceID)
	if err != nil {
		if errors.Is(err, ErrUnknownPrice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "checkout session failed"})
		return
	}
	if h.auditLogger != nil {
		h.auditLogger.LogEvent(c.Request.Context(), userID, "checkout_started", "subscription", req.PriceID)
	}
	analytics.EmitAsync(h.emitter, c.Request.Context(),
		analytics.NewEvent("checkout_started", "", userID, "", map[string]string{"price_id": req.PriceID}))
	c.JSON(http.StatusOK, gin.H{
		"session_id":    session.ID,
		"client_secret": session.ClientSecret,
	})
}

func (h *Handler) get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	sub, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subscription lookup failed"})
		return
	}
	if sub == nil {
		c.JSON(http.StatusOK, gin.H{"tier": "free", "status": "inactive"})
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}
	signature := c.GetHeader("Stripe-Signature")
	if err := h.svc.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		switch {
		case errors.Is(err, ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		case errors.Is(err, ErrUnknownAccount):
			// Acknowledge so Stripe stops retrying an event we can never attribute.
			c.JSON(http.StatusOK, gin.H{"received": true})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
