// Package googleapi proxies Google Analytics and Google Ads reports using
// the user's stored OAuth token.
package googleapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	connectdomain "webstack-ceo/backend/internal/connect/domain"
)

const requestTimeout = 20 * time.Second

// Sentinel errors mapped to HTTP codes by the handler.
var (
	ErrNotConnected      = errors.New("google account not connected")
	ErrReconnectRequired = errors.New("google token expired, reconnect required")
)

// Default upstream base URLs, overridable for tests.
const (
	DefaultAnalyticsBaseURL = "https://analyticsdata.googleapis.com"
	DefaultAdsBaseURL       = "https://googleads.googleapis.com"
)

// Point is one normalized report row.
type Point struct {
	Date        string  `json:"date"`
	Sessions    int64   `json:"sessions"`
	Users       int64   `json:"users"`
	Conversions float64 `json:"conversions"`
}

// TokenSourcer resolves a stored token for the user's service connection.
// Satisfied by the connect service.
type TokenSourcer interface {
	TokenSource(ctx context.Context, userID string, provider connectdomain.Provider, service string) (oauth2.TokenSource, error)
}

// Client fetches and normalizes upstream reports.
type Client struct {
	tokens           TokenSourcer
	analyticsBaseURL string
	adsBaseURL       string
	newHTTPClient    func(ctx context.Context, ts oauth2.TokenSource) *http.Client
}

// NewClient returns a googleapi client reading tokens from tokens.
func NewClient(tokens TokenSourcer) *Client {
	return &Client{
		tokens:           tokens,
		analyticsBaseURL: DefaultAnalyticsBaseURL,
		adsBaseURL:       DefaultAdsBaseURL,
		newHTTPClient: func(ctx context.Context, ts oauth2.TokenSource) *http.Client {
			c := oauth2.NewClient(ctx, ts)
			c.Timeout = requestTimeout
			return c
		},
	}
}

func (c *Client) httpFor(ctx context.Context, userID, service string) (*http.Client, error) {
	ts, err := c.tokens.TokenSource(ctx, userID, connectdomain.ProviderGoogle, service)
	if err != nil {
		return nil, ErrNotConnected
	}
	return c.newHTTPClient(ctx, ts), nil
}

// AnalyticsReport runs a GA4 report for the property over the date range and
// returns one point per day.
func (c *Client) AnalyticsReport(ctx context.Context, userID, propertyID, startDate, endDate string) ([]Point, error) {
	hc, err := c.httpFor(ctx, userID, "analytics")
	if err != nil {
		return nil, err
	}
	body := map[string]any{
		"dateRanges": []map[string]string{{"startDate": startDate, "endDate": endDate}},
		"dimensions": []map[string]string{{"name": "date"}},
		"metrics": []map[string]string{
			{"name": "sessions"},
			{"name": "totalUsers"},
			{"name": "conversions"},
		},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/v1beta/properties/%s:runReport", c.analyticsBaseURL, propertyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrReconnectRequired
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analytics report failed status=%d", resp.StatusCode)
	}
	return normalizeAnalytics(payload), nil
}

func normalizeAnalytics(raw []byte) []Point {
	var out []Point
	gjson.GetBytes(raw, "rows").ForEach(func(_, row gjson.Result) bool {
		metrics := row.Get("metricValues")
		out = append(out, Point{
			Date:        row.Get("dimensionValues.0.value").String(),
			Sessions:    metrics.Get("0.value").Int(),
			Users:       metrics.Get("1.value").Int(),
			Conversions: metrics.Get("2.value").Float(),
		})
		return true
	})
	return out
}

// AdsReport runs a Google Ads search query for the customer over the date
// range and returns one point per day.
func (c *Client) AdsReport(ctx context.Context, userID, customerID, startDate, endDate string) ([]Point, error) {
	hc, err := c.httpFor(ctx, userID, "ads")
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		"SELECT segments.date, metrics.clicks, metrics.impressions, metrics.conversions FROM customer WHERE segments.date BETWEEN '%s' AND '%s'",
		startDate, endDate)
	raw, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/v16/customers/%s/googleAds:search", c.adsBaseURL, customerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrReconnectRequired
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ads report failed status=%d", resp.StatusCode)
	}
	return normalizeAds(payload), nil
}

func normalizeAds(raw []byte) []Point {
	var out []Point
	gjson.GetBytes(raw, "results").ForEach(func(_, row gjson.Result) bool {
		out = append(out, Point{
			Date:        row.Get("segments.date").String(),
			Sessions:    row.Get("metrics.clicks").Int(),
			Users:       row.Get("metrics.impressions").Int(),
			Conversions: row.Get("metrics.conversions").Float(),
		})
		return true
	})
	return out
}
