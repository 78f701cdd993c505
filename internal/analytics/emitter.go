// Package analytics emits product analytics events (page views, sessions,
// checkout and assistant usage) to Kafka for the worker to ship to Loki.
package analytics

import (
	"context"
	"time"
)

// Event is one analytics event. Marshaled as JSON onto the Kafka topic.
type Event struct {
	EventType string            `json:"eventType"`
	Domain    string            `json:"domain,omitempty"`
	UserID    string            `json:"userId,omitempty"`
	SessionID string            `json:"sessionId,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewEvent returns an Event stamped with the current time.
func NewEvent(eventType, domain, userID, sessionID string, metadata map[string]string) *Event {
	return &Event{
		EventType: eventType,
		Domain:    domain,
		UserID:    userID,
		SessionID: sessionID,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
}

// EventEmitter emits analytics events (e.g. to Kafka). Best-effort; callers
// log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
