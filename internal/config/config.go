// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the API server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "webstack-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "webstack-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// OAuth client credentials for the Connect flows. OAuthRedirectURL is
	// shared across providers; the provider name is appended as a path segment.
	GoogleClientID       string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	TwitterClientID      string `mapstructure:"TWITTER_CLIENT_ID"`
	TwitterClientSecret  string `mapstructure:"TWITTER_CLIENT_SECRET"`
	LinkedInClientID     string `mapstructure:"LINKEDIN_CLIENT_ID"`
	LinkedInClientSecret string `mapstructure:"LINKEDIN_CLIENT_SECRET"`
	FacebookClientID     string `mapstructure:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret string `mapstructure:"FACEBOOK_CLIENT_SECRET"`
	OAuthRedirectURL     string `mapstructure:"OAUTH_REDIRECT_URL"`

	// Stripe checkout and webhook verification.
	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripeBaseURL       string `mapstructure:"STRIPE_BASE_URL"`
	// Price ids for the paid tiers and the post-checkout return URL.
	StripePriceStarter string `mapstructure:"STRIPE_PRICE_STARTER"`
	StripePricePro     string `mapstructure:"STRIPE_PRICE_PRO"`
	CheckoutReturnURL  string `mapstructure:"CHECKOUT_RETURN_URL"`

	// BRON/CADE content API credentials.
	BronAPIKey  string `mapstructure:"BRON_API_KEY"`
	BronBaseURL string `mapstructure:"BRON_BASE_URL"`
	CadeAPIKey  string `mapstructure:"CADE_API_KEY"`
	CadeBaseURL string `mapstructure:"CADE_BASE_URL"`

	// OpenAIAPIKey enables the AI assistant endpoint.
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	// AssistantModel is the chat model used by the assistant.
	AssistantModel string `mapstructure:"ASSISTANT_MODEL"`

	// PlacesAPIKey is the Google Places API key for the autocomplete proxy.
	PlacesAPIKey string `mapstructure:"PLACES_API_KEY"`

	// Screenshot provider for site previews.
	ScreenshotAPIKey  string `mapstructure:"SCREENSHOT_API_KEY"`
	ScreenshotBaseURL string `mapstructure:"SCREENSHOT_BASE_URL"`

	// CacheDir is where the bbolt proxy cache lives. Empty disables caching.
	CacheDir string `mapstructure:"CACHE_DIR"`

	// Analytics (optional). When Kafka brokers are set, the server emits
	// analytics events to Kafka and the worker consumes them.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"ANALYTICS_KAFKA_TOPIC"`
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// LokiURL is used by cmd/worker to push analytics events to Loki.
	LokiURL string `mapstructure:"LOKI_URL"`
	// OTLPEndpoint enables OTel trace/metric export when set (e.g. localhost:4317).
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export regardless of scheme.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("JWT_ISSUER", "webstack-auth")
	v.SetDefault("JWT_AUDIENCE", "webstack-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("STRIPE_BASE_URL", "https://api.stripe.com")
	v.SetDefault("BRON_BASE_URL", "https://api.bron.ai/v1")
	v.SetDefault("CADE_BASE_URL", "https://api.cade.ai/v1")
	v.SetDefault("ASSISTANT_MODEL", "gpt-4o-mini")
	v.SetDefault("SCREENSHOT_BASE_URL", "https://api.screenshotone.com/take")
	v.SetDefault("CACHE_DIR", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("ANALYTICS_KAFKA_TOPIC", "webstack-analytics")
	v.SetDefault("KAFKA_GROUP_ID", "webstack-analytics-worker")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTRefreshTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// PriceTiers maps configured Stripe price ids to plan tiers. Unconfigured
// prices are omitted.
func (c *Config) PriceTiers() map[string]string {
	tiers := map[string]string{}
	if c.StripePriceStarter != "" {
		tiers[c.StripePriceStarter] = "starter"
	}
	if c.StripePricePro != "" {
		tiers[c.StripePricePro] = "pro"
	}
	return tiers
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if analytics is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
