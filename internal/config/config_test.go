package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "webstack-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "webstack-auth")
	}
	if cfg.JWTAudience != "webstack-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "webstack-api")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.StripeBaseURL != "https://api.stripe.com" {
		t.Errorf("StripeBaseURL = %q, want default", cfg.StripeBaseURL)
	}
	if cfg.KafkaTopic != "webstack-analytics" {
		t.Errorf("KafkaTopic = %q, want default", cfg.KafkaTopic)
	}
	if cfg.AssistantModel != "gpt-4o-mini" {
		t.Errorf("AssistantModel = %q, want default", cfg.AssistantModel)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")
	os.Setenv("BRON_BASE_URL", "http://localhost:9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
	if cfg.BronBaseURL != "http://localhost:9999" {
		t.Errorf("BronBaseURL = %q, want override", cfg.BronBaseURL)
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("BCRYPT_COST", "99")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail for BCRYPT_COST out of range")
	}
}

func TestAccessTTL(t *testing.T) {
	c := &Config{JWTAccessTTL: "30m"}
	if got := c.AccessTTL(); got != 30*time.Minute {
		t.Errorf("AccessTTL = %v, want 30m", got)
	}
	c = &Config{JWTAccessTTL: "bogus"}
	if got := c.AccessTTL(); got != 15*time.Minute {
		t.Errorf("AccessTTL fallback = %v, want 15m", got)
	}
}

func TestRefreshTTL(t *testing.T) {
	c := &Config{JWTRefreshTTL: "24h"}
	if got := c.RefreshTTL(); got != 24*time.Hour {
		t.Errorf("RefreshTTL = %v, want 24h", got)
	}
	c = &Config{}
	if got := c.RefreshTTL(); got != 168*time.Hour {
		t.Errorf("RefreshTTL fallback = %v, want 168h", got)
	}
}

func TestKafkaBrokersList(t *testing.T) {
	c := &Config{KafkaBrokers: "a:9092, b:9092 ,,"}
	got := c.KafkaBrokersList()
	if len(got) != 2 || got[0] != "a:9092" || got[1] != "b:9092" {
		t.Errorf("KafkaBrokersList = %v", got)
	}
	c = &Config{}
	if got := c.KafkaBrokersList(); got != nil {
		t.Errorf("KafkaBrokersList empty = %v, want nil", got)
	}
}
