package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresRepository implements Repository backed by PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an assistant usage repository using db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Used returns the count consumed in the given week, 0 when no row exists.
func (r *PostgresRepository) Used(ctx context.Context, userID string, weekStart time.Time) (int, error) {
	var used int
	err := r.db.QueryRowContext(ctx, `
		SELECT used FROM ai_assistant_usage
		WHERE user_id = $1 AND week_start = $2
	`, userID, weekStart).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return used, nil
}

// Consume atomically increments the week's counter when under limit. The
// WHERE clause on the upsert makes concurrent calls race-safe: at most limit
// increments succeed per (user_id, week_start).
func (r *PostgresRepository) Consume(ctx context.Context, userID string, weekStart time.Time, limit int) (int, bool, error) {
	var used int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO ai_assistant_usage (user_id, week_start, used, updated_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (user_id, week_start) DO UPDATE
			SET used = ai_assistant_usage.used + 1, updated_at = EXCLUDED.updated_at
			WHERE ai_assistant_usage.used < $4
		RETURNING used
	`, userID, weekStart, time.Now().UTC(), limit).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		// Conflict row already at the limit; the update was suppressed.
		current, err := r.Used(ctx, userID, weekStart)
		if err != nil {
			return 0, false, err
		}
		return current, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return used, true, nil
}
