package audit

import (
	"context"
	"errors"
	"testing"

	"webstack-ceo/backend/internal/audit/domain"
)

type mockAuditRepo struct {
	created []*domain.AuditLog
	err     error
}

func (m *mockAuditRepo) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	return m.created, nil
}

func (m *mockAuditRepo) Create(ctx context.Context, a *domain.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, a)
	return nil
}

func TestLogEvent(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, func(ctx context.Context) string { return "203.0.113.9" }, nil)

	logger.LogEvent(context.Background(), "user-1", "login", "session", `{"ok":true}`)

	if len(repo.created) != 1 {
		t.Fatalf("created = %d, want 1", len(repo.created))
	}
	e := repo.created[0]
	if e.UserID != "user-1" || e.Action != "login" || e.Resource != "session" {
		t.Errorf("entry = %+v", e)
	}
	if e.IP != "203.0.113.9" {
		t.Errorf("ip = %q", e.IP)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Errorf("entry missing id or timestamp: %+v", e)
	}
}

func TestLogEvent_AnonymousAndUnknownIP(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, nil, nil)

	logger.LogEvent(context.Background(), "", "login_failure", "session", "")

	e := repo.created[0]
	if e.UserID != AnonymousUserID {
		t.Errorf("user id = %q, want %q", e.UserID, AnonymousUserID)
	}
	if e.IP != "unknown" {
		t.Errorf("ip = %q, want unknown", e.IP)
	}
}

func TestLogEvent_BestEffort(t *testing.T) {
	repo := &mockAuditRepo{err: errors.New("db down")}
	logger := NewLogger(repo, nil, nil)

	// Must not panic or surface the repository error.
	logger.LogEvent(context.Background(), "user-1", "login", "session", "")
}

func TestLogEvent_NilRepo(t *testing.T) {
	logger := NewLogger(nil, nil, nil)
	logger.LogEvent(context.Background(), "user-1", "login", "session", "")
}
