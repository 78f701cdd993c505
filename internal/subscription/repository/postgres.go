package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"webstack-ceo/backend/internal/subscription/domain"
)

// PostgresRepository implements Repository backed by PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a subscription repository using db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const subscriptionColumns = `user_id, stripe_customer_id, stripe_subscription_id, price_id, tier, status, current_period_end, created_at, updated_at`

func scanSubscription(scan func(dest ...any) error) (*domain.Subscription, error) {
	var sub domain.Subscription
	var periodEnd sql.NullTime
	if err := scan(
		&sub.UserID,
		&sub.StripeCustomerID,
		&sub.StripeSubscriptionID,
		&sub.PriceID,
		&sub.Tier,
		&sub.Status,
		&periodEnd,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if periodEnd.Valid {
		t := periodEnd.Time
		sub.CurrentPeriodEnd = &t
	}
	return &sub, nil
}

// Get returns the user's subscription, or (nil, nil) when absent.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*domain.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = $1
	`, userID)
	sub, err := scanSubscription(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// GetByStripeSubscriptionID resolves the owning row for a Stripe subscription
// id, or (nil, nil) when absent. Used by webhook events that carry no user id.
func (r *PostgresRepository) GetByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*domain.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE stripe_subscription_id = $1
	`, stripeSubscriptionID)
	sub, err := scanSubscription(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Upsert inserts or replaces the user's subscription row, keeping the
// original created_at.
func (r *PostgresRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	var periodEnd sql.NullTime
	if sub.CurrentPeriodEnd != nil {
		periodEnd = sql.NullTime{Time: *sub.CurrentPeriodEnd, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (user_id, stripe_customer_id, stripe_subscription_id, price_id, tier, status, current_period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			stripe_customer_id     = EXCLUDED.stripe_customer_id,
			stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			price_id               = EXCLUDED.price_id,
			tier                   = EXCLUDED.tier,
			status                 = EXCLUDED.status,
			current_period_end     = EXCLUDED.current_period_end,
			updated_at             = EXCLUDED.updated_at
	`,
		sub.UserID,
		sub.StripeCustomerID,
		sub.StripeSubscriptionID,
		sub.PriceID,
		sub.Tier,
		sub.Status,
		periodEnd,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	return err
}

// AppendEvent records a processed billing event in the history table.
func (r *PostgresRepository) AppendEvent(ctx context.Context, ev *domain.Event) error {
	var payload any
	if len(ev.Payload) > 0 {
		payload = ev.Payload
	}
	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscription_events (user_id, event_type, stripe_event_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ev.UserID, ev.EventType, ev.StripeEventID, payload, createdAt)
	return err
}
