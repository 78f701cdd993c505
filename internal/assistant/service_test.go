package assistant

import (
	"context"
	"errors"
	"testing"
	"time"
	"unicode/utf8"
)

type mockQuotaRepo struct {
	used map[string]int
}

func newMockQuotaRepo() *mockQuotaRepo {
	return &mockQuotaRepo{used: map[string]int{}}
}

func quotaKey(userID string, weekStart time.Time) string {
	return userID + "|" + weekStart.Format("2006-01-02")
}

func (m *mockQuotaRepo) Used(ctx context.Context, userID string, weekStart time.Time) (int, error) {
	return m.used[quotaKey(userID, weekStart)], nil
}

func (m *mockQuotaRepo) Consume(ctx context.Context, userID string, weekStart time.Time, limit int) (int, bool, error) {
	k := quotaKey(userID, weekStart)
	if m.used[k] >= limit {
		return m.used[k], false, nil
	}
	m.used[k]++
	return m.used[k], true, nil
}

type staticTiers string

func (s staticTiers) Tier(ctx context.Context, userID string) (string, error) {
	return string(s), nil
}

func TestWeekStart(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		// Monday maps to itself at midnight.
		{time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC), time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
		// Sunday belongs to the preceding Monday.
		{time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC), time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
		// Mid-week.
		{time.Date(2026, 8, 27, 0, 0, 1, 0, time.UTC), time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
		// Non-UTC input normalizes to UTC first.
		{time.Date(2026, 8, 24, 1, 0, 0, 0, time.FixedZone("plus3", 3*3600)), time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		if got := WeekStart(c.in); !got.Equal(c.want) {
			t.Errorf("WeekStart(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLimit(t *testing.T) {
	if got := Limit("pro"); got != 500 {
		t.Errorf("pro limit = %d, want 500", got)
	}
	if got := Limit("starter"); got != 50 {
		t.Errorf("starter limit = %d, want 50", got)
	}
	if got, free := Limit("nonsense"), Limit("free"); got != free {
		t.Errorf("unknown tier limit = %d, want free fallback %d", got, free)
	}
}

func TestUsage(t *testing.T) {
	repo := newMockQuotaRepo()
	svc := NewService(repo, staticTiers("starter"), nil, "")

	week := WeekStart(time.Now())
	for i := 0; i < 3; i++ {
		if _, _, err := repo.Consume(context.Background(), "user-1", week, 50); err != nil {
			t.Fatalf("Consume: %v", err)
		}
	}
	a, err := svc.Usage(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if a.Used != 3 || a.Limit != 50 || a.Remaining != 47 {
		t.Errorf("usage = %+v, want used 3 limit 50 remaining 47", a)
	}
}

func TestAsk_NotConfigured(t *testing.T) {
	repo := newMockQuotaRepo()
	svc := NewService(repo, staticTiers("free"), nil, "")

	_, err := svc.Ask(context.Background(), "user-1", "hello")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if got, _ := repo.Used(context.Background(), "user-1", WeekStart(time.Now())); got != 0 {
		t.Errorf("quota spent %d times without a configured client", got)
	}
}

func TestAsk_EmptyPrompt(t *testing.T) {
	svc := NewService(newMockQuotaRepo(), staticTiers("free"), nil, "")
	if _, err := svc.Ask(context.Background(), "user-1", "   "); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("err = %v, want ErrEmptyPrompt", err)
	}
}

func TestTruncatePrompt_RuneBoundary(t *testing.T) {
	// "é" is 2 bytes; a 5-byte cap lands mid-rune after two of them.
	prompt := "ab" + "éé"
	got := truncatePrompt(prompt, 5)
	if got != "abé" {
		t.Errorf("truncatePrompt = %q, want %q", got, "abé")
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncated prompt is not valid UTF-8: %q", got)
	}

	if got := truncatePrompt("short", 100); got != "short" {
		t.Errorf("under-limit prompt changed: %q", got)
	}
	if got := truncatePrompt("abcdef", 4); got != "abcd" {
		t.Errorf("ASCII truncation = %q, want %q", got, "abcd")
	}
}

func TestConsume_StopsAtLimit(t *testing.T) {
	repo := newMockQuotaRepo()
	week := WeekStart(time.Now())

	for i := 0; i < 5; i++ {
		used, ok, err := repo.Consume(context.Background(), "user-1", week, 5)
		if err != nil || !ok {
			t.Fatalf("consume %d: used=%d ok=%v err=%v", i, used, ok, err)
		}
	}
	used, ok, err := repo.Consume(context.Background(), "user-1", week, 5)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if ok || used != 5 {
		t.Errorf("past limit: used=%d ok=%v, want 5/false", used, ok)
	}
}
