package domain

import "time"

// Provider is an OAuth provider the dashboard can connect.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderTwitter  Provider = "twitter"
	ProviderLinkedIn Provider = "linkedin"
	ProviderFacebook Provider = "facebook"
)

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderTwitter, ProviderLinkedIn, ProviderFacebook:
		return true
	}
	return false
}

// GoogleServices are the dashboard panels that each read their own copy of a
// Google token. One code exchange fans the token out to one row per service
// so no panel needs to re-authenticate.
var GoogleServices = []string{
	"analytics",
	"ads",
	"search-console",
	"business-profile",
	"tag-manager",
	"my-business-reviews",
}

// Connection is one stored OAuth token scoped to a provider and service.
// For non-Google providers service equals the provider name.
type Connection struct {
	ID           string
	UserID       string
	Provider     Provider
	Service      string
	AccessToken  string
	RefreshToken string
	Scope        string
	ExpiresAt    *time.Time // nil when the provider issues non-expiring tokens
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
