package repository

import (
	"context"
	"time"
)

// Repository tracks per-user weekly assistant usage.
type Repository interface {
	// Used returns the count consumed in the week starting at weekStart.
	Used(ctx context.Context, userID string, weekStart time.Time) (int, error)
	// Consume increments the week's counter by one if used < limit.
	// Returns the new count and whether the increment was applied.
	Consume(ctx context.Context, userID string, weekStart time.Time, limit int) (int, bool, error)
}
