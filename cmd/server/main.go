package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"webstack-ceo/backend/internal/analytics"
	analyticsotel "webstack-ceo/backend/internal/analytics/otel"
	"webstack-ceo/backend/internal/analytics/producer"
	"webstack-ceo/backend/internal/assistant"
	assistantrepo "webstack-ceo/backend/internal/assistant/repository"
	"webstack-ceo/backend/internal/audit"
	auditrepo "webstack-ceo/backend/internal/audit/repository"
	"webstack-ceo/backend/internal/auth"
	"webstack-ceo/backend/internal/bron"
	"webstack-ceo/backend/internal/config"
	"webstack-ceo/backend/internal/connect"
	connectdomain "webstack-ceo/backend/internal/connect/domain"
	connectrepo "webstack-ceo/backend/internal/connect/repository"
	"webstack-ceo/backend/internal/db"
	"webstack-ceo/backend/internal/googleapi"
	"webstack-ceo/backend/internal/places"
	"webstack-ceo/backend/internal/profile"
	"webstack-ceo/backend/internal/security"
	"webstack-ceo/backend/internal/server"
	"webstack-ceo/backend/internal/server/middleware"
	sessionrepo "webstack-ceo/backend/internal/session/repository"
	"webstack-ceo/backend/internal/sitemeta"
	"webstack-ceo/backend/internal/subscription"
	subscriptionrepo "webstack-ceo/backend/internal/subscription/repository"
	userrepo "webstack-ceo/backend/internal/user/repository"
	"webstack-ceo/backend/internal/visitor"
	visitorrepo "webstack-ceo/backend/internal/visitor/repository"
)

const serviceName = "webstack-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	providers, err := analyticsotel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		logger.Fatal("otel setup failed", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown failed", zap.Error(err))
		}
	}()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database open failed", zap.Error(err))
	}
	defer database.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		logger.Fatal("JWT private key invalid", zap.Error(err))
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		logger.Fatal("JWT public key invalid", zap.Error(err))
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	users := userrepo.NewPostgresRepository(database)
	sessions := sessionrepo.NewPostgresRepository(database)
	visitors := visitorrepo.NewPostgresRepository(database)
	connections := connectrepo.NewPostgresRepository(database)
	subscriptions := subscriptionrepo.NewPostgresRepository(database)
	assistantUsage := assistantrepo.NewPostgresRepository(database)
	auditLogs := auditrepo.NewPostgresRepository(database)

	auditLogger := audit.NewLogger(auditLogs, middleware.GetClientIP, logger)

	var emitter analytics.EventEmitter
	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		kp, err := producer.NewKafkaProducer(brokers, cfg.KafkaTopic)
		if err != nil {
			logger.Fatal("kafka producer failed", zap.Error(err))
		}
		if kp != nil {
			defer kp.Close()
			emitter = kp
		}
	}

	authSvc := auth.NewService(users, sessions, hasher, tokens, cfg.RefreshTTL())
	visitorSvc := visitor.NewService(visitors)

	connectCreds := map[connectdomain.Provider]connect.ProviderCredentials{
		connectdomain.ProviderGoogle:   {ClientID: cfg.GoogleClientID, ClientSecret: cfg.GoogleClientSecret},
		connectdomain.ProviderTwitter:  {ClientID: cfg.TwitterClientID, ClientSecret: cfg.TwitterClientSecret},
		connectdomain.ProviderLinkedIn: {ClientID: cfg.LinkedInClientID, ClientSecret: cfg.LinkedInClientSecret},
		connectdomain.ProviderFacebook: {ClientID: cfg.FacebookClientID, ClientSecret: cfg.FacebookClientSecret},
	}
	connectSvc := connect.NewService(connections, connectCreds, cfg.OAuthRedirectURL)

	stripeClient := subscription.NewStripeClient(cfg.StripeSecretKey, cfg.StripeBaseURL)
	subscriptionSvc := subscription.NewService(subscriptions, stripeClient, cfg.StripeWebhookSecret, cfg.CheckoutReturnURL, cfg.PriceTiers())

	profileSvc := profile.NewService(users, subscriptionSvc)

	var openaiClient *openai.Client
	if cfg.OpenAIAPIKey != "" {
		c := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
		openaiClient = &c
	}
	assistantSvc := assistant.NewService(assistantUsage, subscriptionSvc, openaiClient, cfg.AssistantModel)

	var cache *bron.Cache
	if cfg.CacheDir != "" {
		cache, err = bron.NewCache(filepath.Join(cfg.CacheDir, "bron.db"), time.Hour)
		if err != nil {
			logger.Fatal("bron cache open failed", zap.Error(err))
		}
		defer cache.Close()
	}
	bronSvc := bron.NewService(
		bron.NewClient(cfg.BronBaseURL, cfg.BronAPIKey),
		bron.NewClient(cfg.CadeBaseURL, cfg.CadeAPIKey),
		cache, logger)

	googleClient := googleapi.NewClient(connectSvc)
	placesClient := places.NewClient(cfg.PlacesAPIKey)
	sitemetaSvc := sitemeta.NewService(cfg.ScreenshotBaseURL, cfg.ScreenshotAPIKey, logger)

	engine := server.NewRouter(server.Deps{
		Logger:       logger,
		Tokens:       tokens,
		Auth:         auth.NewHandler(authSvc, auditLogger),
		Visitor:      visitor.NewHandler(visitorSvc, emitter, logger),
		Connect:      connect.NewHandler(connectSvc, auditLogger),
		Profile:      profile.NewHandler(profileSvc, auditLogger),
		Subscription: subscription.NewHandler(subscriptionSvc, auditLogger, emitter),
		Assistant:    assistant.NewHandler(assistantSvc, emitter),
		Bron:         bron.NewHandler(bronSvc, profileSvc),
		Google:       googleapi.NewHandler(googleClient),
		Places:       places.NewHandler(placesClient),
		SiteMeta:     sitemeta.NewHandler(sitemetaSvc),
		Audit:        audit.NewHandler(auditLogs),
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown failed", zap.Error(err))
	}
	// Give in-flight async analytics emits time to land before the producer closes.
	time.Sleep(analytics.ShutdownDrainDuration)
	logger.Info("http server stopped")
}
