// Package plan gates endpoints on the caller's subscription tier.
package plan

import (
	"context"
	"errors"

	"webstack-ceo/backend/internal/server/middleware"
)

// Sentinel errors for tier gating; handlers map them to HTTP status codes.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrTierRequired    = errors.New("plan upgrade required")
)

// tierRank orders the known tiers. Unknown tiers rank as free.
var tierRank = map[string]int{
	"free":    0,
	"starter": 1,
	"pro":     2,
}

// TierGetter returns a user's effective plan tier. Satisfied by the profile service.
type TierGetter interface {
	GetTier(ctx context.Context, userID string) (string, error)
}

// RequireTier ensures the caller is authenticated and holds at least the
// given tier. Returns (userID, nil) on success.
func RequireTier(ctx context.Context, getter TierGetter, tier string) (string, error) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok || userID == "" {
		return "", ErrUnauthenticated
	}
	have, err := getter.GetTier(ctx, userID)
	if err != nil {
		return "", err
	}
	if tierRank[have] < tierRank[tier] {
		return "", ErrTierRequired
	}
	return userID, nil
}
