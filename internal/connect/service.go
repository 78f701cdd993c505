// Package connect implements the social/Google OAuth connect flows and the
// token fan-out that lets each dashboard panel read its own token row.
package connect

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"webstack-ceo/backend/internal/connect/domain"
	connectrepo "webstack-ceo/backend/internal/connect/repository"
)

// Sentinel errors for the connect service; the handler maps them to HTTP status codes.
var (
	ErrUnknownProvider       = errors.New("unknown provider")
	ErrProviderNotConfigured = errors.New("provider not configured")
	ErrExchangeFailed        = errors.New("code exchange failed")
)

// twitterEndpoint and friends are defined inline; golang.org/x/oauth2 ships a
// Google endpoint but these change rarely enough to pin here.
var (
	twitterEndpoint = oauth2.Endpoint{
		AuthURL:  "https://twitter.com/i/oauth2/authorize",
		TokenURL: "https://api.twitter.com/2/oauth2/token",
	}
	linkedinEndpoint = oauth2.Endpoint{
		AuthURL:  "https://www.linkedin.com/oauth/v2/authorization",
		TokenURL: "https://www.linkedin.com/oauth/v2/accessToken",
	}
	facebookEndpoint = oauth2.Endpoint{
		AuthURL:  "https://www.facebook.com/v18.0/dialog/oauth",
		TokenURL: "https://graph.facebook.com/v18.0/oauth/access_token",
	}
)

// googleScopes cover every panel the Google token fans out to.
var googleScopes = []string{
	"https://www.googleapis.com/auth/analytics.readonly",
	"https://www.googleapis.com/auth/adwords",
	"https://www.googleapis.com/auth/webmasters.readonly",
	"https://www.googleapis.com/auth/business.manage",
}

// ProviderCredentials holds one provider's OAuth client credentials.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Service implements AuthURL, Exchange (with fan-out), List, and Disconnect.
type Service struct {
	repo        connectrepo.Repository
	creds       map[domain.Provider]ProviderCredentials
	redirectURL string
	now         func() time.Time
}

// NewService returns a connect service. Providers with empty credentials are
// reported as not configured at call time rather than at startup, so a deploy
// without e.g. Facebook keys still serves the others.
func NewService(repo connectrepo.Repository, creds map[domain.Provider]ProviderCredentials, redirectURL string) *Service {
	return &Service{repo: repo, creds: creds, redirectURL: redirectURL, now: time.Now}
}

func (s *Service) oauthConfig(provider domain.Provider) (*oauth2.Config, error) {
	if !provider.Valid() {
		return nil, ErrUnknownProvider
	}
	cred, ok := s.creds[provider]
	if !ok || cred.ClientID == "" || cred.ClientSecret == "" {
		return nil, ErrProviderNotConfigured
	}
	cfg := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		RedirectURL:  strings.TrimSuffix(s.redirectURL, "/") + "/" + string(provider),
		Scopes:       cred.Scopes,
	}
	switch provider {
	case domain.ProviderGoogle:
		cfg.Endpoint = google.Endpoint
		if len(cfg.Scopes) == 0 {
			cfg.Scopes = googleScopes
		}
	case domain.ProviderTwitter:
		cfg.Endpoint = twitterEndpoint
	case domain.ProviderLinkedIn:
		cfg.Endpoint = linkedinEndpoint
	case domain.ProviderFacebook:
		cfg.Endpoint = facebookEndpoint
	}
	return cfg, nil
}

// AuthURL returns the provider's consent page URL carrying state.
// Google requests offline access so a refresh token is issued.
func (s *Service) AuthURL(provider domain.Provider, state string) (string, error) {
	cfg, err := s.oauthConfig(provider)
	if err != nil {
		return "", err
	}
	opts := []oauth2.AuthCodeOption{}
	if provider == domain.ProviderGoogle {
		opts = append(opts, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	}
	return cfg.AuthCodeURL(state, opts...), nil
}

// Exchange swaps the authorization code for a token and persists it. For
// Google the one token is fanned out to one row per dependent service so each
// dashboard panel reads its own row. Returns the stored connections.
func (s *Service) Exchange(ctx context.Context, userID string, provider domain.Provider, code string) ([]*domain.Connection, error) {
	cfg, err := s.oauthConfig(provider)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, ErrExchangeFailed
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, ErrExchangeFailed
	}

	services := []string{string(provider)}
	if provider == domain.ProviderGoogle {
		services = domain.GoogleServices
	}

	now := s.now().UTC()
	var expiresAt *time.Time
	if !tok.Expiry.IsZero() {
		e := tok.Expiry.UTC()
		expiresAt = &e
	}
	out := make([]*domain.Connection, 0, len(services))
	for _, svc := range services {
		conn := &domain.Connection{
			ID:           uuid.New().String(),
			UserID:       userID,
			Provider:     provider,
			Service:      svc,
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			Scope:        strings.Join(cfg.Scopes, " "),
			ExpiresAt:    expiresAt,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.Upsert(ctx, conn); err != nil {
			return nil, err
		}
		out = append(out, conn)
	}
	return out, nil
}

// List returns all of the user's connections.
func (s *Service) List(ctx context.Context, userID string) ([]*domain.Connection, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Disconnect removes every stored row for the provider (all fanned-out
// services at once).
func (s *Service) Disconnect(ctx context.Context, userID string, provider domain.Provider) error {
	if !provider.Valid() {
		return ErrUnknownProvider
	}
	return s.repo.DeleteByProvider(ctx, userID, provider)
}

// TokenSource returns an oauth2 token source for the user's stored service
// token, for calling upstream APIs on the user's behalf.
func (s *Service) TokenSource(ctx context.Context, userID string, provider domain.Provider, service string) (oauth2.TokenSource, error) {
	conn, err := s.repo.GetByService(ctx, userID, provider, service)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, ErrProviderNotConfigured
	}
	tok := &oauth2.Token{AccessToken: conn.AccessToken, RefreshToken: conn.RefreshToken}
	if conn.ExpiresAt != nil {
		tok.Expiry = *conn.ExpiresAt
	}
	return oauth2.StaticTokenSource(tok), nil
}
