package domain

import "time"

// Subscription states mirrored from Stripe.
const (
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
	StatusInactive = "inactive"
)

// Tiers known to the plan gate. Free is the implicit default when no
// subscription row exists or the row is not active.
const (
	TierFree    = "free"
	TierStarter = "starter"
	TierPro     = "pro"
)

// Subscription is one user's current billing state. One row per user,
// upserted as Stripe webhooks arrive.
type Subscription struct {
	UserID               string     `json:"user_id"`
	StripeCustomerID     string     `json:"stripe_customer_id"`
	StripeSubscriptionID string     `json:"stripe_subscription_id"`
	PriceID              string     `json:"price_id"`
	Tier                 string     `json:"tier"`
	Status               string     `json:"status"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Active reports whether the subscription grants its tier.
func (s *Subscription) Active() bool {
	return s != nil && s.Status == StatusActive
}

// Event is one append-only history row for a processed Stripe event.
type Event struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	EventType     string    `json:"event_type"`
	StripeEventID string    `json:"stripe_event_id"`
	Payload       []byte    `json:"payload,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
