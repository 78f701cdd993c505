// Package server builds the HTTP router and its middleware chain.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webstack-ceo/backend/internal/assistant"
	"webstack-ceo/backend/internal/audit"
	"webstack-ceo/backend/internal/auth"
	"webstack-ceo/backend/internal/bron"
	"webstack-ceo/backend/internal/connect"
	"webstack-ceo/backend/internal/googleapi"
	"webstack-ceo/backend/internal/places"
	"webstack-ceo/backend/internal/profile"
	"webstack-ceo/backend/internal/security"
	"webstack-ceo/backend/internal/server/middleware"
	"webstack-ceo/backend/internal/sitemeta"
	"webstack-ceo/backend/internal/subscription"
	"webstack-ceo/backend/internal/visitor"
)

// Deps carries the handlers mounted on the router. Nil handlers are skipped
// so a deploy without e.g. Stripe keys still serves the rest.
type Deps struct {
	Logger       *zap.Logger
	Tokens       *security.TokenProvider
	Auth         *auth.Handler
	Visitor      *visitor.Handler
	Connect      *connect.Handler
	Profile      *profile.Handler
	Subscription *subscription.Handler
	Assistant    *assistant.Handler
	Bron         *bron.Handler
	Google       *googleapi.Handler
	Places       *places.Handler
	SiteMeta     *sitemeta.Handler
	Audit        *audit.Handler
}

// NewRouter builds the gin engine with the full middleware chain and every
// configured handler mounted under /api/v1.
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.ClientIP())
	engine.Use(middleware.Identity(deps.Tokens))
	engine.Use(middleware.Telemetry())
	engine.Use(middleware.RequestLog(logger))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := engine.Group("/api/v1")
	private := engine.Group("/api/v1")
	private.Use(middleware.RequireAuth())

	if deps.Auth != nil {
		deps.Auth.Register(public)
	}
	if deps.Visitor != nil {
		deps.Visitor.Register(public, private)
	}
	if deps.Connect != nil {
		deps.Connect.Register(private)
	}
	if deps.Profile != nil {
		deps.Profile.Register(private)
	}
	if deps.Subscription != nil {
		deps.Subscription.Register(public, private)
	}
	if deps.Assistant != nil {
		deps.Assistant.Register(private)
	}
	if deps.Bron != nil {
		deps.Bron.Register(private)
	}
	if deps.Google != nil {
		deps.Google.Register(private)
	}
	if deps.Places != nil {
		deps.Places.Register(public)
	}
	if deps.SiteMeta != nil {
		deps.SiteMeta.Register(public)
	}
	if deps.Audit != nil {
		deps.Audit.Register(private)
	}

	return engine
}
