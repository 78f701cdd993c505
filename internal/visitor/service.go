// Package visitor implements site visitor tracking and the live-visitors view.
package visitor

import (
	"context"
	"errors"
	"strings"
	"time"

	"webstack-ceo/backend/internal/visitor/domain"
	visitorrepo "webstack-ceo/backend/internal/visitor/repository"
)

// ErrMissingSession is returned when a tracking call has no session id.
var ErrMissingSession = errors.New("session_id required")

// Service implements tracking writes and the deduplicated live-visitor read.
type Service struct {
	repo visitorrepo.Repository
	now  func() time.Time
}

// NewService returns a Service backed by repo.
func NewService(repo visitorrepo.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Track upserts the visitor session. Called on page mount; userID may be empty
// for anonymous visitors.
func (s *Service) Track(ctx context.Context, sessionID, dom, userID, path, referrer, userAgent string) error {
	sessionID = strings.TrimSpace(sessionID)
	dom = normalizeDomain(dom)
	if sessionID == "" {
		return ErrMissingSession
	}
	if dom == "" {
		return errors.New("domain required")
	}
	now := s.now().UTC()
	vs := &domain.VisitorSession{
		SessionID:  sessionID,
		Domain:     dom,
		Path:       defaultPath(path),
		Referrer:   referrer,
		UserAgent:  userAgent,
		StartedAt:  now,
		LastSeenAt: now,
	}
	if userID != "" {
		vs.UserID = &userID
	}
	return s.repo.Upsert(ctx, vs)
}

// Heartbeat refreshes the session's last-seen timestamp (the client sends one
// every 30 seconds while the tab is open).
func (s *Service) Heartbeat(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrMissingSession
	}
	return s.repo.Touch(ctx, sessionID, s.now().UTC())
}

// PageView appends a page view row. Called on route change.
func (s *Service) PageView(ctx context.Context, sessionID, dom, path, referrer string) error {
	sessionID = strings.TrimSpace(sessionID)
	dom = normalizeDomain(dom)
	if sessionID == "" {
		return ErrMissingSession
	}
	if dom == "" {
		return errors.New("domain required")
	}
	return s.repo.CreatePageView(ctx, &domain.PageView{
		SessionID: sessionID,
		Domain:    dom,
		Path:      defaultPath(path),
		Referrer:  referrer,
		CreatedAt: s.now().UTC(),
	})
}

// ListLive returns the deduplicated live visitors for the domain: sessions
// seen within the live window, newest first, at most one entry per person.
// selfSessionID marks the caller's own session so the dashboard can label it.
func (s *Service) ListLive(ctx context.Context, dom, selfSessionID string) ([]domain.LiveVisitor, error) {
	dom = normalizeDomain(dom)
	if dom == "" {
		return nil, errors.New("domain required")
	}
	since := s.now().UTC().Add(-domain.LiveWindow)
	sessions, err := s.repo.ListActive(ctx, dom, since)
	if err != nil {
		return nil, err
	}
	return Dedup(sessions, selfSessionID), nil
}

// Dedup collapses sessions to one entry per person. Input must be sorted by
// last_seen_at descending (most recent kept). Identity priority: the caller's
// own session, then user id for logged-in visitors, then session id. A person
// never appears twice: a logged-in caller's self entry also claims their user
// key, so their other tabs are suppressed.
func Dedup(sessions []*domain.VisitorSession, selfSessionID string) []domain.LiveVisitor {
	seen := make(map[string]bool, len(sessions))
	// The self entry claims the caller's user key up front so the caller's
	// other tabs are suppressed regardless of sort position.
	if selfSessionID != "" {
		for _, vs := range sessions {
			if vs.SessionID == selfSessionID && vs.UserID != nil && *vs.UserID != "" {
				seen["user:"+*vs.UserID] = true
				break
			}
		}
	}
	out := make([]domain.LiveVisitor, 0, len(sessions))
	for _, vs := range sessions {
		key := "session:" + vs.SessionID
		isSelf := selfSessionID != "" && vs.SessionID == selfSessionID
		switch {
		case isSelf:
			key = "self"
		case vs.UserID != nil && *vs.UserID != "":
			key = "user:" + *vs.UserID
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		lv := domain.LiveVisitor{
			SessionID:  vs.SessionID,
			Path:       vs.Path,
			LastSeenAt: vs.LastSeenAt,
			IsSelf:     isSelf,
		}
		if vs.UserID != nil {
			lv.UserID = *vs.UserID
		}
		out = append(out, lv)
	}
	return out
}

func normalizeDomain(d string) string {
	d = strings.TrimSpace(strings.ToLower(d))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	return d
}

func defaultPath(p string) string {
	if strings.TrimSpace(p) == "" {
		return "/"
	}
	return p
}
