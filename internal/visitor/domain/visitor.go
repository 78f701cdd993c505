package domain

import "time"

// LiveWindow is how far back a session's last_seen_at may be for the
// session to count as a live visitor.
const LiveWindow = 5 * time.Minute

// VisitorSession is one browser session on a tracked site, upserted by SessionID.
type VisitorSession struct {
	SessionID  string
	Domain     string
	UserID     *string // nil for anonymous visitors
	Path       string
	Referrer   string
	UserAgent  string
	StartedAt  time.Time
	LastSeenAt time.Time
}

// PageView is one append-only page view record, written on route change.
type PageView struct {
	ID        int64
	SessionID string
	Domain    string
	Path      string
	Referrer  string
	CreatedAt time.Time
}

// LiveVisitor is a deduplicated live visitor as shown on the dashboard.
type LiveVisitor struct {
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id,omitempty"`
	Path       string    `json:"path"`
	LastSeenAt time.Time `json:"last_seen_at"`
	IsSelf     bool      `json:"is_self"`
}
