// Package subscription handles Stripe checkout, webhook processing, and the
// per-user subscription row the plan gate reads.
package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/tidwall/gjson"

	"webstack-ceo/backend/internal/subscription/domain"
	subrepo "webstack-ceo/backend/internal/subscription/repository"
)

var (
	ErrUnknownPrice   = errors.New("unknown price")
	ErrUnknownAccount = errors.New("event not attributable to a user")
)

// Checkouter creates checkout sessions; satisfied by StripeClient.
type Checkouter interface {
	CreateCheckoutSession(ctx context.Context, userID, priceID, returnURL string) (*CheckoutSession, error)
}

// Service wires Stripe checkout and webhook handling to the repository.
type Service struct {
	repo          subrepo.Repository
	stripe        Checkouter
	webhookSecret string
	returnURL     string
	priceTiers    map[string]string
	now           func() time.Time
}

// NewService returns a subscription service. priceTiers maps Stripe price ids
// to plan tiers; unknown prices are rejected at checkout time.
func NewService(repo subrepo.Repository, stripe Checkouter, webhookSecret, returnURL string, priceTiers map[string]string) *Service {
	return &Service{
		repo:          repo,
		stripe:        stripe,
		webhookSecret: webhookSecret,
		returnURL:     returnURL,
		priceTiers:    priceTiers,
		now:           time.Now,
	}
}

// CreateCheckoutSession starts an embedded checkout for the price.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID, priceID string) (*CheckoutSession, error) {
	if _, ok := s.priceTiers[priceID]; !ok {
		return nil, ErrUnknownPrice
	}
	return s.stripe.CreateCheckoutSession(ctx, userID, priceID, s.returnURL)
}

// Get returns the user's subscription; nil means no row (free tier).
func (s *Service) Get(ctx context.Context, userID string) (*domain.Subscription, error) {
	return s.repo.Get(ctx, userID)
}

// Tier returns the user's effective plan tier.
func (s *Service) Tier(ctx context.Context, userID string) (string, error) {
	sub, err := s.repo.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if !sub.Active() {
		return domain.TierFree, nil
	}
	return sub.Tier, nil
}

// HandleWebhook verifies the signature and applies the event. Unhandled event
// types are acknowledged without effect.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if err := VerifySignature(payload, signature, s.webhookSecret, s.now()); err != nil {
		return err
	}
	eventType := gjson.GetBytes(payload, "type").String()
	switch eventType {
	case "checkout.session.completed":
		return s.applyCheckoutCompleted(ctx, payload)
	case "customer.subscription.updated", "customer.subscription.deleted":
		return s.applySubscriptionChange(ctx, eventType, payload)
	default:
		return nil
	}
}

func (s *Service) applyCheckoutCompleted(ctx context.Context, payload []byte) error {
	obj := gjson.GetBytes(payload, "data.object")
	userID := obj.Get("client_reference_id").String()
	if userID == "" {
		return ErrUnknownAccount
	}
	priceID := obj.Get("line_items.data.0.price.id").String()
	if priceID == "" {
		priceID = obj.Get("metadata.price_id").String()
	}
	tier, ok := s.priceTiers[priceID]
	if !ok {
		tier = domain.TierStarter
	}
	now := s.now().UTC()
	existing, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	createdAt := now
	if existing != nil {
		createdAt = existing.CreatedAt
	}
	sub := &domain.Subscription{
		UserID:               userID,
		StripeCustomerID:     obj.Get("customer").String(),
		StripeSubscriptionID: obj.Get("subscription").String(),
		PriceID:              priceID,
		Tier:                 tier,
		Status:               domain.StatusActive,
		CreatedAt:            createdAt,
		UpdatedAt:            now,
	}
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return err
	}
	return s.repo.AppendEvent(ctx, &domain.Event{
		UserID:        userID,
		EventType:     "checkout.session.completed",
		StripeEventID: gjson.GetBytes(payload, "id").String(),
		Payload:       payload,
		CreatedAt:     now,
	})
}

func (s *Service) applySubscriptionChange(ctx context.Context, eventType string, payload []byte) error {
	obj := gjson.GetBytes(payload, "data.object")
	stripeSubID := obj.Get("id").String()
	sub, err := s.repo.GetByStripeSubscriptionID(ctx, stripeSubID)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrUnknownAccount
	}
	now := s.now().UTC()
	if eventType == "customer.subscription.deleted" {
		sub.Status = domain.StatusCanceled
	} else {
		sub.Status = obj.Get("status").String()
		if priceID := obj.Get("items.data.0.price.id").String(); priceID != "" {
			sub.PriceID = priceID
			if tier, ok := s.priceTiers[priceID]; ok {
				sub.Tier = tier
			}
		}
	}
	if end := obj.Get("current_period_end").Int(); end > 0 {
		t := time.Unix(end, 0).UTC()
		sub.CurrentPeriodEnd = &t
	}
	sub.UpdatedAt = now
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return err
	}
	return s.repo.AppendEvent(ctx, &domain.Event{
		UserID:        sub.UserID,
		EventType:     eventType,
		StripeEventID: gjson.GetBytes(payload, "id").String(),
		Payload:       payload,
		CreatedAt:     now,
	})
}
