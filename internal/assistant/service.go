// Package assistant proxies prompts to the model API behind a per-tier
// weekly quota.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	asstrepo "webstack-ceo/backend/internal/assistant/repository"
)

const (
	defaultModel   = shared.ResponsesModel("gpt-4o-mini")
	maxPromptBytes = 16 * 1024
)

// truncatePrompt caps the prompt at max bytes without splitting a UTF-8
// sequence, backing up to the nearest rune boundary.
func truncatePrompt(prompt string, max int) string {
	if len(prompt) <= max {
		return prompt
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(prompt[cut]) {
		cut--
	}
	return prompt[:cut]
}

var (
	ErrQuotaExceeded = errors.New("weekly assistant quota exceeded")
	ErrEmptyPrompt   = errors.New("prompt is empty")
	ErrNotConfigured = errors.New("assistant not configured")
)

// Weekly prompt limits per plan tier. Unknown tiers fall back to free.
var tierLimits = map[string]int{
	"free":    5,
	"starter": 50,
	"pro":     500,
}

const systemPrompt = `You are the Webstack assistant. You help small-business
owners understand their website analytics, advertising performance, and online
presence. Answer concisely and concretely; when the data is insufficient, say
so instead of guessing.`

// TierResolver reports the user's effective plan tier.
type TierResolver interface {
	Tier(ctx context.Context, userID string) (string, error)
}

// Service enforces the weekly quota and forwards prompts to the model.
type Service struct {
	repo   asstrepo.Repository
	tiers  TierResolver
	client *openai.Client
	model  shared.ResponsesModel
	now    func() time.Time
}

// NewService returns an assistant service. client may be nil when no API key
// is configured; Ask then fails with ErrNotConfigured without spending quota.
// model falls back to the default when empty.
func NewService(repo asstrepo.Repository, tiers TierResolver, client *openai.Client, model string) *Service {
	m := defaultModel
	if model != "" {
		m = shared.ResponsesModel(model)
	}
	return &Service{repo: repo, tiers: tiers, client: client, model: m, now: time.Now}
}

// Answer is the assistant's reply plus the remaining weekly quota.
type Answer struct {
	Reply     string `json:"reply"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}

// WeekStart truncates t to the Monday 00:00 UTC that opens its quota week.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// Limit returns the weekly prompt limit for the tier.
func Limit(tier string) int {
	if n, ok := tierLimits[tier]; ok {
		return n
	}
	return tierLimits["free"]
}

// Usage reports the user's current-week consumption without spending quota.
func (s *Service) Usage(ctx context.Context, userID string) (*Answer, error) {
	tier, err := s.tiers.Tier(ctx, userID)
	if err != nil {
		return nil, err
	}
	limit := Limit(tier)
	used, err := s.repo.Used(ctx, userID, WeekStart(s.now()))
	if err != nil {
		return nil, err
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &Answer{Used: used, Limit: limit, Remaining: remaining}, nil
}

// Ask consumes one unit of the week's quota and forwards the prompt. The
// quota is spent before the upstream call so a flood of failing prompts
// cannot bypass the limit.
func (s *Service) Ask(ctx context.Context, userID, prompt string) (*Answer, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	prompt = truncatePrompt(prompt, maxPromptBytes)
	if s.client == nil {
		return nil, ErrNotConfigured
	}
	tier, err := s.tiers.Tier(ctx, userID)
	if err != nil {
		return nil, err
	}
	limit := Limit(tier)
	used, ok, err := s.repo.Consume(ctx, userID, WeekStart(s.now()), limit)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d of %d used", ErrQuotaExceeded, used, limit)
	}

	resp, err := s.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: s.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(systemPrompt, responses.EasyInputMessageRoleSystem),
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("call model: %w", err)
	}
	reply := strings.TrimSpace(resp.OutputText())
	if reply == "" {
		return nil, errors.New("model returned an empty response")
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &Answer{Reply: reply, Used: used, Limit: limit, Remaining: remaining}, nil
}
