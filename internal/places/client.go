// Package places proxies the Places autocomplete API for the onboarding form.
package places

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const requestTimeout = 10 * time.Second

// DefaultBaseURL is the autocomplete endpoint, overridable for tests.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/place/autocomplete/json"

// ErrMissingInput is returned when autocomplete is called without input text.
var ErrMissingInput = errors.New("input is required")

// Prediction is one normalized autocomplete suggestion.
type Prediction struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

// Client calls the autocomplete API with a server-side key.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a places client for the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: requestTimeout},
	}
}

// Autocomplete returns predictions for the input. sessionToken groups the
// keystrokes of one lookup for upstream billing; it may be empty.
func (c *Client) Autocomplete(ctx context.Context, input, sessionToken string) ([]Prediction, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrMissingInput
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("places: API key not configured")
	}
	q := url.Values{}
	q.Set("input", input)
	q.Set("key", c.APIKey)
	q.Set("types", "establishment")
	if sessionToken != "" {
		q.Set("sessiontoken", sessionToken)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
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
		return nil, fmt.Errorf("places: request failed status=%d", resp.StatusCode)
	}
	if status := gjson.GetBytes(raw, "status").String(); status != "OK" && status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places: upstream status=%s", status)
	}
	var out []Prediction
	gjson.GetBytes(raw, "predictions").ForEach(func(_, p gjson.Result) bool {
		out = append(out, Prediction{
			Description: p.Get("description").String(),
			PlaceID:     p.Get("place_id").String(),
		})
		return true
	})
	return out, nil
}
