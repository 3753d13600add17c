// Package audit records every mutation of sector data and identity state:
// who changed what, the full before/after snapshots, and the client the
// change came from.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Action classifies a mutation.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Entry is one immutable audit trail row.
type Entry struct {
	ID        uuid.UUID       `json:"id"`
	ActorID   uuid.UUID       `json:"actor_id"`
	Action    Action          `json:"action"`
	TableName string          `json:"table_name"`
	RecordID  uuid.UUID       `json:"record_id"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	ClientIP  string          `json:"client_ip,omitempty"`
	UserAgent string          `json:"user_agent,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Filter narrows a trail listing. Zero values match everything.
type Filter struct {
	ActorID   uuid.UUID
	TableName string
	Action    Action
}

// Matches reports whether an entry satisfies the filter.
func (f Filter) Matches(e Entry) bool {
	if f.ActorID != uuid.Nil && e.ActorID != f.ActorID {
		return false
	}
	if f.TableName != "" && e.TableName != f.TableName {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	return true
}
