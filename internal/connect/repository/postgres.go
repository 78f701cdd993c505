package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"webstack-ceo/backend/internal/connect/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an OAuth connection repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const connectionColumns = `id, user_id, provider, service, access_token, refresh_token, scope, expires_at, created_at, updated_at`

// Upsert inserts the connection or refreshes tokens on conflict. NULLIF keeps
// the stored refresh token when the new exchange did not return one.
func (r *PostgresRepository) Upsert(ctx context.Context, c *domain.Connection) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO oauth_connections (id, user_id, provider, service, access_token, refresh_token, scope, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, provider, service) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), oauth_connections.refresh_token),
			scope = EXCLUDED.scope,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at`,
		c.ID, c.UserID, string(c.Provider), c.Service, c.AccessToken, c.RefreshToken, c.Scope,
		timeToNullTime(c.ExpiresAt), c.CreatedAt, c.UpdatedAt,
	)
	return err
}

// GetByService returns the connection for (user, provider, service), or nil if not found.
func (r *PostgresRepository) GetByService(ctx context.Context, userID string, provider domain.Provider, service string) (*domain.Connection, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+connectionColumns+` FROM oauth_connections
		WHERE user_id = $1 AND provider = $2 AND service = $3`,
		userID, string(provider), service)
	c, err := scanConnection(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// ListByUser returns all connections for the user ordered by provider then service.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Connection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+connectionColumns+` FROM oauth_connections
		WHERE user_id = $1 ORDER BY provider, service`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Connection
	for rows.Next() {
		c, err := scanConnection(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteByProvider removes all connection rows for the user's provider.
func (r *PostgresRepository) DeleteByProvider(ctx context.Context, userID string, provider domain.Provider) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM oauth_connections WHERE user_id = $1 AND provider = $2`,
		userID, string(provider))
	return err
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func scanConnection(scan func(...any) error) (*domain.Connection, error) {
	var c domain.Connection
	var provider string
	var expiresAt sql.NullTime
	if err := scan(&c.ID, &c.UserID, &provider, &c.Service, &c.AccessToken, &c.RefreshToken, &c.Scope, &expiresAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Provider = domain.Provider(provider)
	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	return &c, nil
}
