// Package pipeline is the audited write path for sector records. Every
// mutation validates, persists, and writes its audit trail entry inside one
// transaction, then hands off recompute and broadcast work best-effort.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"pulseboard/internal/audit"
	"pulseboard/internal/identity"
	"pulseboard/internal/jobs"
	"pulseboard/internal/notify"
	"pulseboard/internal/platform/metrics"
	"pulseboard/internal/records"
	"pulseboard/internal/records/store"
	dErrors "pulseboard/pkg/domain-errors"
	"pulseboard/pkg/platform/sentinel"
	"pulseboard/pkg/platform/tx"
	"pulseboard/pkg/requestcontext"
)

// Patch is a partial update for record type T. Natural-key fields are not
// patchable; a record's identity never changes in place.
type Patch[T records.Record] interface {
	Validate() error
	Apply(rec T)
	Fields() map[string]any
}

// Service runs the audited pipeline for one sector's record type.
type Service[T records.Record, P Patch[T]] struct {
	sector      string
	store       store.Store[T]
	recorder    *audit.Recorder
	enqueuer    jobs.Enqueuer
	broadcaster notify.Broadcaster
	runner      tx.Runner
	metrics     *metrics.Metrics
	logger      *slog.Logger
	proto       T
}

// New wires a pipeline service. proto is a zero-value record used to derive
// sector metadata and aggregate ratios when a window holds no records.
func New[T records.Record, P Patch[T]](
	st store.Store[T],
	recorder *audit.Recorder,
	enqueuer jobs.Enqueuer,
	broadcaster notify.Broadcaster,
	runner tx.Runner,
	m *metrics.Metrics,
	logger *slog.Logger,
	proto T,
) *Service[T, P] {
	return &Service[T, P]{
		sector:      proto.Sector(),
		store:       st,
		recorder:    recorder,
		enqueuer:    enqueuer,
		broadcaster: broadcaster,
		runner:      runner,
		metrics:     m,
		logger:      logger,
		proto:       proto,
	}
}

// Sector is the canonical sector identifier this pipeline serves.
func (s *Service[T, P]) Sector() string { return s.sector }

// Create validates and persists a new record, owned by the actor. The
// natural-key pre-check gives a clear conflict message; the storage unique
// index remains the authoritative guard against concurrent duplicates.
func (s *Service[T, P]) Create(ctx context.Context, actor *identity.Principal, rec T) (T, error) {
	var zero T
	if actor == nil {
		return zero, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := rec.Validate(); err != nil {
		return zero, err
	}

	key := rec.NaturalKey()
	if _, err := s.store.FindByKey(ctx, key); err == nil {
		return zero, dErrors.New(dErrors.CodeConflict, "record already exists for "+key.String())
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return zero, dErrors.Wrap(err, dErrors.CodeInternal, "check for existing record")
	}

	now := requestcontext.Now(ctx)
	meta := rec.RecordMeta()
	meta.ID = uuid.New()
	meta.OwnerID = actor.ID
	meta.CreatedAt = now
	meta.UpdatedAt = now

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Insert(ctx, rec); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "record already exists for "+key.String())
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "insert record")
		}
		return s.recorder.Record(ctx, actor.ID, audit.ActionCreate, rec.Table(), meta.ID, nil, rec)
	})
	if err != nil {
		return zero, err
	}

	s.metrics.IncrementCreated(s.sector)
	s.dispatch(ctx, actor.ID, "create", rec)
	return rec, nil
}

// Get fetches one record by id.
func (s *Service[T, P]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		var zero T
		if errors.Is(err, sentinel.ErrNotFound) {
			return zero, dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return zero, dErrors.Wrap(err, dErrors.CodeInternal, "find record")
	}
	return rec, nil
}

// List returns records in the date window, newest first, with the total
// matching count for pagination.
func (s *Service[T, P]) List(ctx context.Context, filter store.Filter, page store.Page) ([]T, int, error) {
	items, total, err := s.store.List(ctx, filter, page)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "list records")
	}
	return items, total, nil
}

// Update applies a partial update. The trail entry keeps the full prior row
// and the changed fields.
func (s *Service[T, P]) Update(ctx context.Context, actor *identity.Principal, id uuid.UUID, patch P) (T, error) {
	var zero T
	if actor == nil {
		return zero, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := patch.Validate(); err != nil {
		return zero, err
	}

	var updated T
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		rec, err := s.store.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "record not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "find record")
		}

		// snapshot the prior row before the patch mutates it in place
		before, err := json.Marshal(rec)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "snapshot record")
		}
		patch.Apply(rec)
		if err := rec.Validate(); err != nil {
			return err
		}
		rec.RecordMeta().UpdatedAt = requestcontext.Now(ctx)

		if err := s.store.Update(ctx, rec); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "record already exists for "+rec.NaturalKey().String())
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "update record")
		}
		updated = rec
		return s.recorder.Record(ctx, actor.ID, audit.ActionUpdate, rec.Table(), id, json.RawMessage(before), patch.Fields())
	})
	if err != nil {
		return zero, err
	}

	s.metrics.IncrementUpdated(s.sector)
	s.dispatch(ctx, actor.ID, "update", updated)
	return updated, nil
}

// Delete removes a record, keeping its final state in the trail.
func (s *Service[T, P]) Delete(ctx context.Context, actor *identity.Principal, id uuid.UUID) error {
	if actor == nil {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	var deleted T
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		rec, err := s.store.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "record not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "find record")
		}
		if err := s.store.Delete(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "delete record")
		}
		deleted = rec
		return s.recorder.Record(ctx, actor.ID, audit.ActionDelete, rec.Table(), id, rec, nil)
	})
	if err != nil {
		return err
	}

	s.metrics.IncrementDeleted(s.sector)
	s.dispatch(ctx, actor.ID, "delete", deleted)
	return nil
}

// dispatch hands off recompute and broadcast work after a committed
// mutation. Both are best-effort: failures are logged and counted, never
// surfaced to the caller.
func (s *Service[T, P]) dispatch(ctx context.Context, actorID uuid.UUID, action string, rec T) {
	meta := rec.RecordMeta()
	job := jobs.Job{
		Sector:   s.sector,
		Action:   action,
		RecordID: meta.ID,
		DateRef:  rec.Date().String(),
		UserID:   actorID,
	}
	if err := s.enqueuer.Enqueue(ctx, job); err != nil {
		s.metrics.IncrementEnqueueFailed()
		s.logger.Warn("recompute enqueue failed",
			"sector", s.sector,
			"action", action,
			"record_id", meta.ID,
			"error", err,
		)
	}
	event := notify.Event{
		Sector:    s.sector,
		Action:    action,
		RecordID:  meta.ID,
		DateRef:   rec.Date().String(),
		ActorID:   actorID,
		Timestamp: requestcontext.Now(ctx),
	}
	if err := s.broadcaster.Broadcast(ctx, event); err != nil {
		s.metrics.IncrementBroadcastFailed()
		s.logger.Warn("mutation broadcast failed",
			"sector", s.sector,
			"action", action,
			"record_id", meta.ID,
			"error", err,
		)
	}
}
