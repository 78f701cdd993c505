package repository

import (
	"context"
	"time"

	"webstack-ceo/backend/internal/visitor/domain"
)

// Repository defines persistence for visitor sessions and page views.
type Repository interface {
	// Upsert inserts the session or, on session_id conflict, refreshes
	// path, referrer, user id, and last_seen_at.
	Upsert(ctx context.Context, s *domain.VisitorSession) error
	// Touch updates last_seen_at for the session; missing rows are ignored.
	Touch(ctx context.Context, sessionID string, at time.Time) error
	// CreatePageView appends one page view row.
	CreatePageView(ctx context.Context, pv *domain.PageView) error
	// ListActive returns sessions for the domain seen since the cutoff,
	// newest first.
	ListActive(ctx context.Context, domain string, since time.Time) ([]*domain.VisitorSession, error)
}
