package bron

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ErrMissingDomain is returned when a report is requested without a domain.
var ErrMissingDomain = errors.New("domain is required")

// Fetcher fetches one raw endpoint payload; satisfied by Client.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint, domain string) ([]byte, error)
}

// Service aggregates the report endpoints and the CADE content feed.
type Service struct {
	bron   Fetcher
	cade   Fetcher
	cache  *Cache
	logger *zap.Logger
}

// NewService returns a bron service. cade, cache, and logger may be nil.
func NewService(bron, cade Fetcher, cache *Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{bron: bron, cade: cade, cache: cache, logger: logger}
}

// fetchCached consults the TTL cache before the upstream and stores fresh
// payloads on success. cacheKey distinguishes BRON and CADE entries for the
// same domain.
func (s *Service) fetchCached(ctx context.Context, f Fetcher, endpoint, cacheKey, domain string) ([]byte, error) {
	if s.cache != nil {
		if raw := s.cache.Get(domain, cacheKey); raw != nil {
			return raw, nil
		}
	}
	raw, err := f.Fetch(ctx, endpoint, domain)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Put(domain, cacheKey, raw); err != nil {
			s.logger.Warn("bron cache write failed", zap.String("endpoint", endpoint), zap.Error(err))
		}
	}
	return raw, nil
}

// FetchAll fetches every report endpoint in parallel. A failed endpoint
// contributes its section's zero value and an entry in Report.Errors; the
// call itself only fails on a missing domain.
func (s *Service) FetchAll(ctx context.Context, domain string) (*Report, error) {
	if domain == "" {
		return nil, ErrMissingDomain
	}

	type result struct {
		endpoint string
		raw      []byte
		err      error
	}
	results := make([]result, len(reportEndpoints))
	var wg sync.WaitGroup
	for i, endpoint := range reportEndpoints {
		wg.Add(1)
		go func(i int, endpoint string) {
			defer wg.Done()
			raw, err := s.fetchCached(ctx, s.bron, endpoint, "bron/"+endpoint, domain)
			results[i] = result{endpoint: endpoint, raw: raw, err: err}
		}(i, endpoint)
	}
	wg.Wait()

	report := &Report{Domain: domain}
	for _, res := range results {
		if res.err != nil {
			s.logger.Warn("bron endpoint failed",
				zap.String("endpoint", res.endpoint),
				zap.String("domain", domain),
				zap.Error(res.err))
			report.Errors = append(report.Errors, res.endpoint)
			continue
		}
		switch res.endpoint {
		case "overview":
			report.Overview = normalizeOverview(res.raw, domain)
		case "keywords":
			report.Keywords = normalizeKeywords(res.raw)
		case "backlinks":
			report.Backlinks = normalizeBacklinks(res.raw)
		case "competitors":
			report.Competitors = normalizeCompetitors(res.raw)
		case "traffic":
			report.Traffic = normalizeTraffic(res.raw)
		case "rankings":
			report.Rankings = normalizeRankings(res.raw)
		case "technical":
			report.Technical = normalizeTechnical(res.raw)
		case "content":
			report.Content = normalizeContent(res.raw)
		case "social":
			report.Social = normalizeSocial(res.raw)
		case "local":
			report.Local = normalizeLocal(res.raw)
		}
	}
	sort.Strings(report.Errors)
	return report, nil
}

// FetchContent returns the normalized CADE article list for the domain.
func (s *Service) FetchContent(ctx context.Context, domain string) ([]Article, error) {
	if domain == "" {
		return nil, ErrMissingDomain
	}
	if s.cade == nil {
		return nil, errors.New("cade not configured")
	}
	raw, err := s.fetchCached(ctx, s.cade, "content", "cade/content", domain)
	if err != nil {
		return nil, err
	}
	return normalizeArticles(raw), nil
}
