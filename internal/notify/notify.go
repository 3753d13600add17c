//go:generate mockgen -source=notify.go -destination=mocks/mocks.go -package=mocks Broadcaster

// Package notify fans mutation events out to downstream dashboards. Delivery
// is best-effort: a broadcast failure never rolls back the write it follows.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one record mutation as seen by dashboard consumers.
type Event struct {
	Sector    string    `json:"sector"`
	Action    string    `json:"action"`
	RecordID  uuid.UUID `json:"record_id"`
	DateRef   string    `json:"date_ref,omitempty"`
	ActorID   uuid.UUID `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Broadcaster publishes mutation events.
type Broadcaster interface {
	Broadcast(ctx context.Context, event Event) error
}

// NopBroadcaster discards events. Used in tests and when no broker is
// configured.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(context.Context, Event) error { return nil }
