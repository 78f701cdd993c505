package domain

import "time"

// AuditLog represents an audit event (auth, subscription, connect actions).
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
