package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"pulseboard/pkg/requestcontext"
)

// Recorder builds trail entries from domain snapshots and appends them. It
// stamps the entry with the request-scoped time and client metadata so every
// entry in one request shares the same instant and provenance.
type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record appends one trail entry. before and after are marshalled as the
// row snapshots; pass nil for the side an action does not have (no before on
// CREATE, no after on DELETE).
func (r *Recorder) Record(ctx context.Context, actorID uuid.UUID, action Action, table string, recordID uuid.UUID, before, after any) error {
	entry := Entry{
		ID:        uuid.New(),
		ActorID:   actorID,
		Action:    action,
		TableName: table,
		RecordID:  recordID,
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		Timestamp: requestcontext.Now(ctx),
	}
	var err error
	if entry.Before, err = marshalSnapshot(before); err != nil {
		return fmt.Errorf("marshal before snapshot: %w", err)
	}
	if entry.After, err = marshalSnapshot(after); err != nil {
		return fmt.Errorf("marshal after snapshot: %w", err)
	}
	if err := r.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// List returns trail entries, newest first, with the total matching count.
func (r *Recorder) List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, int, error) {
	return r.store.List(ctx, filter, limit, offset)
}

func marshalSnapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
