// Package bron aggregates the BRON SEO-data API and the CADE content API
// into the normalized report the dashboard renders.
package bron

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const clientTimeout = 20 * time.Second

// The fixed report endpoints fetched for every domain.
var reportEndpoints = []string{
	"overview",
	"keywords",
	"backlinks",
	"competitors",
	"traffic",
	"rankings",
	"technical",
	"content",
	"social",
	"local",
}

// Client calls a BRON-shaped REST API (also used for CADE, which shares the
// auth scheme on a different base URL).
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient returns a client for the given base URL and API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: clientTimeout},
	}
}

// Fetch GETs /{endpoint}?domain=... and returns the raw JSON body.
func (c *Client) Fetch(ctx context.Context, endpoint, domain string) ([]byte, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("bron: base URL not configured")
	}
	u := c.BaseURL + "/" + endpoint + "?domain=" + url.QueryEscape(domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.APIKey)
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bron: %s failed status=%d", endpoint, resp.StatusCode)
	}
	return body, nil
}
