package repository

import (
	"context"

	"webstack-ceo/backend/internal/connect/domain"
)

// Repository defines persistence for OAuth connections.
type Repository interface {
	// Upsert inserts the connection or, on (user_id, provider, service)
	// conflict, refreshes the tokens. An empty new refresh token keeps the
	// stored one.
	Upsert(ctx context.Context, c *domain.Connection) error
	GetByService(ctx context.Context, userID string, provider domain.Provider, service string) (*domain.Connection, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Connection, error)
	DeleteByProvider(ctx context.Context, userID string, provider domain.Provider) error
}
