// Package sitemeta builds the onboarding site preview: a screenshot plus the
// page's title and OpenGraph metadata, fetched in parallel.
package sitemeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const fetchTimeout = 25 * time.Second

// ErrMissingURL is returned when a preview is requested without a URL.
var ErrMissingURL = errors.New("url is required")

// Preview is the combined result. Fields from a failed branch stay empty.
type Preview struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	OGImage       string `json:"og_image,omitempty"`
	ScreenshotURL string `json:"screenshot_url,omitempty"`
}

// Service fetches previews. screenshotBaseURL points at a screenshot
// provider that returns {"url": "..."} for ?url=...&key=...; empty disables
// the screenshot branch.
type Service struct {
	screenshotBaseURL string
	screenshotKey     string
	httpClient        *http.Client
	logger            *zap.Logger
}

// NewService returns a sitemeta service. logger may be nil.
func NewService(screenshotBaseURL, screenshotKey string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		screenshotBaseURL: strings.TrimSuffix(screenshotBaseURL, "/"),
		screenshotKey:     screenshotKey,
		httpClient:        &http.Client{Timeout: fetchTimeout},
		logger:            logger,
	}
}

// Fetch runs the screenshot request and the metadata scrape in parallel.
// Either branch may fail without failing the call; the error is returned
// only when both branches produced nothing.
func (s *Service) Fetch(ctx context.Context, rawURL string) (*Preview, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrMissingURL
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	preview := &Preview{URL: rawURL}
	var scrapeErr, shotErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scrapeErr = s.scrape(gctx, rawURL, preview)
		if scrapeErr != nil {
			s.logger.Warn("metadata scrape failed", zap.String("url", rawURL), zap.Error(scrapeErr))
		}
		return nil
	})
	g.Go(func() error {
		preview.ScreenshotURL, shotErr = s.screenshot(gctx, rawURL)
		if shotErr != nil {
			s.logger.Warn("screenshot failed", zap.String("url", rawURL), zap.Error(shotErr))
		}
		return nil
	})
	_ = g.Wait()

	if scrapeErr != nil && shotErr != nil {
		return nil, fmt.Errorf("preview failed: %w", scrapeErr)
	}
	return preview, nil
}

func (s *Service) scrape(ctx context.Context, rawURL string, preview *Preview) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "WebstackBot/1.0 (+https://webstack.ceo)")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("page fetch failed status=%d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return err
	}

	preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && og != "" {
		preview.Title = og
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		preview.Description = strings.TrimSpace(desc)
	}
	if og, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && og != "" {
		preview.Description = strings.TrimSpace(og)
	}
	if img, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		preview.OGImage = strings.TrimSpace(img)
	}
	return nil
}

func (s *Service) screenshot(ctx context.Context, rawURL string) (string, error) {
	if s.screenshotBaseURL == "" {
		return "", errors.New("screenshot provider not configured")
	}
	q := url.Values{}
	q.Set("url", rawURL)
	if s.screenshotKey != "" {
		q.Set("key", s.screenshotKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.screenshotBaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("screenshot provider status=%d", resp.StatusCode)
	}
	buf, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", err
	}
	shot := gjson.GetBytes(buf, "url").String()
	if shot == "" {
		shot = gjson.GetBytes(buf, "screenshot_url").String()
	}
	if shot == "" {
		return "", errors.New("screenshot provider returned no url")
	}
	return shot, nil
}
