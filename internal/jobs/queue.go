//go:generate mockgen -source=queue.go -destination=mocks/mocks.go -package=mocks Enqueuer

// Package jobs enqueues KPI recompute work for the background calculation
// worker. The queue speaks the BullMQ wire format: the worker is a Node
// process consuming bull:<queue>:wait.
package jobs

import (
	"context"

	"github.com/google/uuid"
)

// Job describes one recompute request.
type Job struct {
	Sector   string
	Action   string
	RecordID uuid.UUID
	DateRef  string
	UserID   uuid.UUID
}

// Enqueuer submits recompute jobs. Implementations must be safe for
// concurrent use.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// NopEnqueuer discards jobs. Used in tests and when no queue is configured.
type NopEnqueuer struct{}

func (NopEnqueuer) Enqueue(context.Context, Job) error { return nil }
