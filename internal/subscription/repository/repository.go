package repository

import (
	"context"

	"webstack-ceo/backend/internal/subscription/domain"
)

// Repository defines persistence for subscriptions and their event history.
type Repository interface {
	Get(ctx context.Context, userID string) (*domain.Subscription, error)
	GetByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*domain.Subscription, error)
	Upsert(ctx context.Context, sub *domain.Subscription) error
	AppendEvent(ctx context.Context, ev *domain.Event) error
}
