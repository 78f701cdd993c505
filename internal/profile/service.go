// Package profile serves the dashboard settings page: profile reads/writes
// and the plan-tier lookup used by the plan gate.
package profile

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"webstack-ceo/backend/internal/user/domain"
	userrepo "webstack-ceo/backend/internal/user/repository"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidWebsite = errors.New("invalid website domain")
)

// TierResolver reports the user's effective plan tier. Satisfied by the
// subscription service.
type TierResolver interface {
	Tier(ctx context.Context, userID string) (string, error)
}

// Service implements profile reads, updates, and GetTier.
type Service struct {
	users userrepo.Repository
	tiers TierResolver
}

// NewService returns a profile service.
func NewService(users userrepo.Repository, tiers TierResolver) *Service {
	return &Service{users: users, tiers: tiers}
}

// Profile is the settings-page view of a user.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Company   string `json:"company,omitempty"`
	Website   string `json:"website,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func viewProfile(u *domain.User) *Profile {
	return &Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Company:   u.Company,
		Website:   u.Website,
		AvatarURL: u.AvatarURL,
	}
}

// Get returns the user's profile.
func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return viewProfile(u), nil
}

// UpdateRequest carries the mutable profile fields. Nil pointers keep the
// current value.
type UpdateRequest struct {
	Name      *string `json:"name"`
	Company   *string `json:"company"`
	Website   *string `json:"website"`
	AvatarURL *string `json:"avatar_url"`
}

// Update applies the request to the user's profile and returns the result.
// Website is normalized to an apex-ish host (scheme, www., and path stripped).
func (s *Service) Update(ctx context.Context, userID string, req UpdateRequest) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Company != nil {
		u.Company = strings.TrimSpace(*req.Company)
	}
	if req.AvatarURL != nil {
		u.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if req.Website != nil {
		site, err := NormalizeDomain(*req.Website)
		if err != nil {
			return nil, err
		}
		u.Website = site
	}
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return viewProfile(u), nil
}

// GetTier returns the user's effective plan tier ("free" when no active
// subscription exists).
func (s *Service) GetTier(ctx context.Context, userID string) (string, error) {
	return s.tiers.Tier(ctx, userID)
}

// NormalizeDomain reduces a user-entered site to its bare host: scheme,
// leading www., path, and port are stripped. Empty input clears the field.
func NormalizeDomain(raw string) (string, error) {
	site := strings.TrimSpace(strings.ToLower(raw))
	if site == "" {
		return "", nil
	}
	if !strings.Contains(site, "://") {
		site = "https://" + site
	}
	u, err := url.Parse(site)
	if err != nil || u.Hostname() == "" {
		return "", ErrInvalidWebsite
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if !strings.Contains(host, ".") {
		return "", ErrInvalidWebsite
	}
	return host, nil
}
