package repository

import (
	"context"
	"database/sql"
	"time"

	"webstack-ceo/backend/internal/visitor/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a visitor repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts the visitor session or refreshes it on session_id conflict.
// started_at is kept from the first write.
func (r *PostgresRepository) Upsert(ctx context.Context, s *domain.VisitorSession) error {
	var uid sql.NullString
	if s.UserID != nil && *s.UserID != "" {
		uid = sql.NullString{String: *s.UserID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO visitor_sessions (session_id, domain, user_id, path, referrer, user_agent, started_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO UPDATE SET
			user_id = COALESCE(EXCLUDED.user_id, visitor_sessions.user_id),
			path = EXCLUDED.path,
			referrer = EXCLUDED.referrer,
			last_seen_at = EXCLUDED.last_seen_at`,
		s.SessionID, s.Domain, uid, s.Path, s.Referrer, s.UserAgent, s.StartedAt, s.LastSeenAt,
	)
	return err
}

// Touch updates last_seen_at for the session. Missing rows are ignored.
func (r *PostgresRepository) Touch(ctx context.Context, sessionID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE visitor_sessions SET last_seen_at = $2 WHERE session_id = $1`, sessionID, at)
	return err
}

// CreatePageView appends one page view row.
func (r *PostgresRepository) CreatePageView(ctx context.Context, pv *domain.PageView) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO page_views (session_id, domain, path, referrer, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		pv.SessionID, pv.Domain, pv.Path, pv.Referrer, pv.CreatedAt,
	)
	return err
}

// ListActive returns sessions for the domain seen since the cutoff, newest first.
func (r *PostgresRepository) ListActive(ctx context.Context, dom string, since time.Time) ([]*domain.VisitorSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, domain, user_id, path, referrer, user_agent, started_at, last_seen_at
		FROM visitor_sessions
		WHERE domain = $1 AND last_seen_at >= $2
		ORDER BY last_seen_at DESC`, dom, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.VisitorSession
	for rows.Next() {
		var s domain.VisitorSession
		var uid sql.NullString
		if err := rows.Scan(&s.SessionID, &s.Domain, &uid, &s.Path, &s.Referrer, &s.UserAgent, &s.StartedAt, &s.LastSeenAt); err != nil {
			return nil, err
		}
		if uid.Valid {
			u := uid.String
			s.UserID = &u
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
