package visitor

import (
	"context"
	"testing"
	"time"

	"webstack-ceo/backend/internal/visitor/domain"
)

// mockVisitorRepo implements Repository for tests.
type mockVisitorRepo struct {
	upserts   []*domain.VisitorSession
	touches   []string
	pageViews []*domain.PageView
	active    []*domain.VisitorSession
	err       error
}

func (m *mockVisitorRepo) Upsert(ctx context.Context, vs *domain.VisitorSession) error {
	if m.err != nil {
		return m.err
	}
	m.upserts = append(m.upserts, vs)
	return nil
}

func (m *mockVisitorRepo) Touch(ctx context.Context, sessionID string, seenAt time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.touches = append(m.touches, sessionID)
	return nil
}

func (m *mockVisitorRepo) CreatePageView(ctx context.Context, pv *domain.PageView) error {
	if m.err != nil {
		return m.err
	}
	m.pageViews = append(m.pageViews, pv)
	return nil
}

func (m *mockVisitorRepo) ListActive(ctx context.Context, dom string, since time.Time) ([]*domain.VisitorSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.active, nil
}

func strptr(s string) *string { return &s }

func session(id, userID string, seenAgo time.Duration) *domain.VisitorSession {
	vs := &domain.VisitorSession{
		SessionID:  id,
		Domain:     "example.com",
		Path:       "/",
		LastSeenAt: time.Now().UTC().Add(-seenAgo),
	}
	if userID != "" {
		vs.UserID = strptr(userID)
	}
	return vs
}

func TestTrack_NormalizesDomain(t *testing.T) {
	repo := &mockVisitorRepo{}
	svc := NewService(repo)

	if err := svc.Track(context.Background(), "s1", "https://www.Example.com/some/page", "", "", "", "ua"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if len(repo.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(repo.upserts))
	}
	if got := repo.upserts[0].Domain; got != "example.com" {
		t.Errorf("domain = %q, want %q", got, "example.com")
	}
	if got := repo.upserts[0].Path; got != "/" {
		t.Errorf("path = %q, want %q", got, "/")
	}
	if repo.upserts[0].UserID != nil {
		t.Error("user_id should be nil for anonymous visitors")
	}
}

func TestTrack_MissingSession(t *testing.T) {
	svc := NewService(&mockVisitorRepo{})
	if err := svc.Track(context.Background(), "  ", "example.com", "", "/", "", ""); err != ErrMissingSession {
		t.Errorf("err = %v, want ErrMissingSession", err)
	}
}

func TestHeartbeat(t *testing.T) {
	repo := &mockVisitorRepo{}
	svc := NewService(repo)
	if err := svc.Heartbeat(context.Background(), "s1"); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	if len(repo.touches) != 1 || repo.touches[0] != "s1" {
		t.Errorf("touches = %v, want [s1]", repo.touches)
	}
}

func TestPageView_Defaults(t *testing.T) {
	repo := &mockVisitorRepo{}
	svc := NewService(repo)
	if err := svc.PageView(context.Background(), "s1", "example.com", "", ""); err != nil {
		t.Fatalf("PageView: %v", err)
	}
	if got := repo.pageViews[0].Path; got != "/" {
		t.Errorf("path = %q, want %q", got, "/")
	}
}

func TestDedup_CollapsesUserSessions(t *testing.T) {
	// Two tabs from the same logged-in user: only the most recent survives.
	sessions := []*domain.VisitorSession{
		session("s1", "u1", 10*time.Second),
		session("s2", "u1", 30*time.Second),
		session("s3", "", 40*time.Second),
	}

	out := Dedup(sessions, "")
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].SessionID != "s1" {
		t.Errorf("first = %q, want s1 (most recent kept)", out[0].SessionID)
	}
	if out[1].SessionID != "s3" {
		t.Errorf("second = %q, want s3", out[1].SessionID)
	}
}

func TestDedup_SelfClaimsUserKey(t *testing.T) {
	// A logged-in caller with a second tab open is still one person: the
	// self entry claims the user key and the other tab is suppressed.
	sessions := []*domain.VisitorSession{
		session("s1", "u1", 10*time.Second),
		session("s2", "u1", 30*time.Second),
	}

	out := Dedup(sessions, "s1")
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if out[0].SessionID != "s1" || !out[0].IsSelf {
		t.Errorf("entry = %+v, want self session s1", out[0])
	}
}

func TestDedup_SelfClaimsUserKey_OtherTabMoreRecent(t *testing.T) {
	// Same person even when the other tab sorts ahead of the self session.
	sessions := []*domain.VisitorSession{
		session("s2", "u1", 10*time.Second),
		session("s3", "u2", 20*time.Second),
		session("s1", "u1", 30*time.Second),
	}

	out := Dedup(sessions, "s1")
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(out), out)
	}
	if out[0].SessionID != "s3" || out[0].UserID != "u2" {
		t.Errorf("first = %+v, want u2's session", out[0])
	}
	if out[1].SessionID != "s1" || !out[1].IsSelf {
		t.Errorf("second = %+v, want self session s1", out[1])
	}
}

func TestDedup_AnonymousBySession(t *testing.T) {
	sessions := []*domain.VisitorSession{
		session("s1", "", 5*time.Second),
		session("s1", "", 20*time.Second),
		session("s2", "", 25*time.Second),
	}

	out := Dedup(sessions, "")
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
}

func TestListLive_RequiresDomain(t *testing.T) {
	svc := NewService(&mockVisitorRepo{})
	if _, err := svc.ListLive(context.Background(), "", "s1"); err == nil {
		t.Error("expected error for empty domain")
	}
}
