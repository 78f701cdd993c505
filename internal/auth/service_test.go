package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"webstack-ceo/backend/internal/security"
	sessiondomain "webstack-ceo/backend/internal/session/domain"
	userdomain "webstack-ceo/backend/internal/user/domain"
)

// mockUserRepo implements UserRepo for tests.
type mockUserRepo struct {
	byEmail map[string]*userdomain.User
	created []*userdomain.User
	err     error
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byEmail[email], nil
}

func (m *mockUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, u)
	if m.byEmail == nil {
		m.byEmail = map[string]*userdomain.User{}
	}
	m.byEmail[u.Email] = u
	return nil
}

// mockSessionRepo implements SessionRepo for tests.
type mockSessionRepo struct {
	sessions   map[string]*sessiondomain.Session
	revoked    []string
	revokedAll []string
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: map[string]*sessiondomain.Session{}}
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id string) (*sessiondomain.Session, error) {
	return m.sessions[id], nil
}

func (m *mockSessionRepo) Create(ctx context.Context, s *sessiondomain.Session) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionRepo) Revoke(ctx context.Context, id string) error {
	m.revoked = append(m.revoked, id)
	if s, ok := m.sessions[id]; ok {
		now := time.Now().UTC()
		s.RevokedAt = &now
	}
	return nil
}

func (m *mockSessionRepo) RevokeAllByUser(ctx context.Context, userID string) error {
	m.revokedAll = append(m.revokedAll, userID)
	return nil
}

func (m *mockSessionRepo) UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error {
	if s, ok := m.sessions[sessionID]; ok {
		s.RefreshJti = jti
		s.RefreshTokenHash = refreshTokenHash
	}
	return nil
}

func (m *mockSessionRepo) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	if s, ok := m.sessions[id]; ok {
		s.LastSeenAt = &at
	}
	return nil
}

func newTestService(t *testing.T, users *mockUserRepo, sessions *mockSessionRepo) *Service {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("test token provider: %v", err)
	}
	return NewService(users, sessions, security.NewHasher(4), tokens, 24*time.Hour)
}

func TestRegister_Success(t *testing.T) {
	users := &mockUserRepo{}
	svc := newTestService(t, users, newMockSessionRepo())

	res, err := svc.Register(context.Background(), "User@Example.com", "longenoughpw", "User")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.UserID == "" {
		t.Error("expected user id")
	}
	if res.AccessToken != "" {
		t.Error("Register must not issue tokens")
	}
	if len(users.created) != 1 {
		t.Fatalf("created = %d, want 1", len(users.created))
	}
	if got := users.created[0].Email; got != "user@example.com" {
		t.Errorf("email = %q, want lowercased", got)
	}
	if users.created[0].PasswordHash == "longenoughpw" {
		t.Error("password stored in plaintext")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := &mockUserRepo{byEmail: map[string]*userdomain.User{
		"user@example.com": {ID: "u1", Email: "user@example.com"},
	}}
	svc := newTestService(t, users, newMockSessionRepo())

	_, err := svc.Register(context.Background(), "user@example.com", "longenoughpw", "")
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Errorf("err = %v, want ErrEmailAlreadyRegistered", err)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newTestService(t, &mockUserRepo{}, newMockSessionRepo())
	if _, err := svc.Register(context.Background(), "user@example.com", "short", ""); err == nil {
		t.Error("expected error for short password")
	}
}

func registerAndLogin(t *testing.T, svc *Service) *Result {
	t.Helper()
	if _, err := svc.Register(context.Background(), "user@example.com", "longenoughpw", "User"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, err := svc.Login(context.Background(), "user@example.com", "longenoughpw", "127.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return res
}

func TestLogin_Success(t *testing.T) {
	sessions := newMockSessionRepo()
	svc := newTestService(t, &mockUserRepo{}, sessions)

	res := registerAndLogin(t, svc)
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("expected access and refresh tokens")
	}
	if len(sessions.sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions.sessions))
	}
	for _, s := range sessions.sessions {
		if s.IPAddress != "127.0.0.1" {
			t.Errorf("ip = %q, want 127.0.0.1", s.IPAddress)
		}
		if s.RefreshTokenHash == "" || s.RefreshJti == "" {
			t.Error("session missing refresh rotation state")
		}
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(t, &mockUserRepo{}, newMockSessionRepo())
	if _, err := svc.Register(context.Background(), "user@example.com", "longenoughpw", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Login(context.Background(), "user@example.com", "wrongpassword", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestService(t, &mockUserRepo{}, newMockSessionRepo())
	_, err := svc.Login(context.Background(), "nobody@example.com", "longenoughpw", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	sessions := newMockSessionRepo()
	svc := newTestService(t, &mockUserRepo{}, sessions)
	res := registerAndLogin(t, svc)

	rotated, err := svc.Refresh(context.Background(), res.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.RefreshToken == res.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	// The old token's jti no longer matches: reuse detection revokes everything.
	_, err = svc.Refresh(context.Background(), res.RefreshToken)
	if !errors.Is(err, ErrRefreshTokenReuse) {
		t.Fatalf("err = %v, want ErrRefreshTokenReuse", err)
	}
	if len(sessions.revokedAll) != 1 {
		t.Errorf("revokedAll = %v, want one user", sessions.revokedAll)
	}
}

func TestRefresh_RevokedSession(t *testing.T) {
	sessions := newMockSessionRepo()
	svc := newTestService(t, &mockUserRepo{}, sessions)
	res := registerAndLogin(t, svc)

	for id := range sessions.sessions {
		if err := sessions.Revoke(context.Background(), id); err != nil {
			t.Fatalf("Revoke: %v", err)
		}
	}
	_, err := svc.Refresh(context.Background(), res.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("err = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc := newTestService(t, &mockUserRepo{}, newMockSessionRepo())
	_, err := svc.Refresh(context.Background(), "not-a-token")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("err = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestLogout_ByRefreshToken(t *testing.T) {
	sessions := newMockSessionRepo()
	svc := newTestService(t, &mockUserRepo{}, sessions)
	res := registerAndLogin(t, svc)

	if err := svc.Logout(context.Background(), res.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(sessions.revoked) != 1 {
		t.Errorf("revoked = %v, want one session", sessions.revoked)
	}
}

func TestLogout_NoTokenNoContext(t *testing.T) {
	sessions := newMockSessionRepo()
	svc := newTestService(t, &mockUserRepo{}, sessions)

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(sessions.revoked) != 0 {
		t.Errorf("revoked = %v, want none", sessions.revoked)
	}
}
