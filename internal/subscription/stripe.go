package subscription

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const stripeTimeout = 15 * time.Second

// StripeClient calls the Stripe REST API with the secret key.
type StripeClient struct {
	SecretKey  string
	BaseURL    string
	HTTPClient *http.Client
}

// NewStripeClient returns a client for the given secret key and optional base URL.
func NewStripeClient(secretKey, baseURL string) *StripeClient {
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &StripeClient{
		SecretKey:  secretKey,
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: stripeTimeout},
	}
}

// CheckoutSession is the subset of a Stripe checkout session the dashboard needs.
type CheckoutSession struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	URL          string `json:"url,omitempty"`
}

// CreateCheckoutSession creates an embedded checkout session for the price.
// userID travels as client_reference_id so the webhook can attribute the sale.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, userID, priceID, returnURL string) (*CheckoutSession, error) {
	if c.SecretKey == "" {
		return nil, fmt.Errorf("stripe: secret key not configured")
	}
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("ui_mode", "embedded")
	form.Set("client_reference_id", userID)
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	if returnURL != "" {
		form.Set("return_url", returnURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(raw, "error.message").String()
		return nil, fmt.Errorf("stripe: request failed status=%d message=%s", resp.StatusCode, msg)
	}
	return &CheckoutSession{
		ID:           gjson.GetBytes(raw, "id").String(),
		ClientSecret: gjson.GetBytes(raw, "client_secret").String(),
		URL:          gjson.GetBytes(raw, "url").String(),
	}, nil
}
