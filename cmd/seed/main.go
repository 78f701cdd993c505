// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"webstack-ceo/backend/internal/config"
	"webstack-ceo/backend/internal/db"
	"webstack-ceo/backend/internal/security"
)

const (
	devUserEmail = "dev@example.com"
	devPassword  = "password123"
	devUserID    = "dev-user-001"
	devDomain    = "example.com"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	ctx := context.Background()

	var existing string
	err = database.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1`, devUserEmail).Scan(&existing)
	if err == nil {
		fmt.Printf("seed: dev user %s already exists (%s); nothing to do\n", devUserEmail, existing)
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Fatalf("seed: lookup failed: %v", err)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("seed: hash failed: %v", err)
	}

	now := time.Now().UTC()
	_, err = database.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, company, website, avatar_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, '', 'active', $7, $7)`,
		devUserID, devUserEmail, "Dev User", hash, "Example LLC", devDomain, now)
	if err != nil {
		log.Fatalf("seed: insert user failed: %v", err)
	}

	_, err = database.ExecContext(ctx, `
		INSERT INTO subscriptions (user_id, stripe_customer_id, stripe_subscription_id, price_id, tier, status, current_period_end, created_at, updated_at)
		VALUES ($1, 'cus_dev', 'sub_dev', 'price_dev_starter', 'starter', 'active', $2, $3, $3)`,
		devUserID, now.AddDate(0, 1, 0), now)
	if err != nil {
		log.Fatalf("seed: insert subscription failed: %v", err)
	}

	_, err = database.ExecContext(ctx, `
		INSERT INTO visitor_sessions (session_id, user_id, domain, path, referrer, user_agent, started_at, last_seen_at)
		VALUES ('dev-session-001', $1, $2, '/', '', 'seed', $3, $3)`,
		devUserID, devDomain, now)
	if err != nil {
		log.Fatalf("seed: insert visitor session failed: %v", err)
	}

	fmt.Printf("seed: created dev user %s (password %q) with an active starter plan\n", devUserEmail, devPassword)
}
