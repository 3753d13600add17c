package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pulseboard/internal/records"
	"pulseboard/pkg/platform/sentinel"
	txcontext "pulseboard/pkg/platform/tx"
)

const uniqueViolation = "23505"

// Mapper tells the generic Postgres store how a record type maps to its
// table. Columns lists the data columns; Values and Dest must follow the
// same order. Meta columns (id, owner_id, created_at, updated_at) are
// handled by the store itself.
type Mapper[T records.Record] struct {
	Table   string
	Columns []string
	Values  func(rec T) []any
	Dest    func(rec T) []any
	New     func() T
}

// Postgres persists one sector's records in its PostgreSQL table. The unique
// composite index over the natural-key columns is the authoritative duplicate
// guard: a concurrent insert races past the application pre-check and is
// caught here as sentinel.ErrConflict.
type Postgres[T records.Record] struct {
	db     *sql.DB
	mapper Mapper[T]
}

// NewPostgres builds a PostgreSQL-backed record store.
func NewPostgres[T records.Record](db *sql.DB, mapper Mapper[T]) *Postgres[T] {
	return &Postgres[T]{db: db, mapper: mapper}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres[T]) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres[T]) selectColumns() string {
	cols := append([]string{"id", "owner_id", "created_at", "updated_at"}, s.mapper.Columns...)
	return strings.Join(cols, ", ")
}

func (s *Postgres[T]) scan(row interface{ Scan(dest ...any) error }) (T, error) {
	rec := s.mapper.New()
	meta := rec.RecordMeta()
	dest := append([]any{&meta.ID, &meta.OwnerID, &meta.CreatedAt, &meta.UpdatedAt}, s.mapper.Dest(rec)...)
	if err := row.Scan(dest...); err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

func (s *Postgres[T]) Insert(ctx context.Context, rec T) error {
	meta := rec.RecordMeta()
	placeholders := make([]string, 0, 4+len(s.mapper.Columns))
	args := make([]any, 0, 4+len(s.mapper.Columns))
	for i, v := range append([]any{meta.ID, meta.OwnerID, meta.CreatedAt, meta.UpdatedAt}, s.mapper.Values(rec)...) {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, v)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		s.mapper.Table, s.selectColumns(), strings.Join(placeholders, ", "),
	)
	if _, err := s.q(ctx).ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert %s: %w", s.mapper.Table, err)
	}
	return nil
}

func (s *Postgres[T]) FindByID(ctx context.Context, id uuid.UUID) (T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", s.selectColumns(), s.mapper.Table)
	rec, err := s.scan(s.q(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, sentinel.ErrNotFound
		}
		return zero, fmt.Errorf("find %s by id: %w", s.mapper.Table, err)
	}
	return rec, nil
}

func (s *Postgres[T]) FindByKey(ctx context.Context, key records.Key) (T, error) {
	conds := make([]string, 0, len(key))
	args := make([]any, 0, len(key))
	for i, f := range key {
		conds = append(conds, fmt.Sprintf("%s = $%d", f.Column, i+1))
		args = append(args, f.Value)
	}
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s",
		s.selectColumns(), s.mapper.Table, strings.Join(conds, " AND "),
	)
	rec, err := s.scan(s.q(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, sentinel.ErrNotFound
		}
		return zero, fmt.Errorf("find %s by key: %w", s.mapper.Table, err)
	}
	return rec, nil
}

func (s *Postgres[T]) Update(ctx context.Context, rec T) error {
	meta := rec.RecordMeta()
	sets := []string{"updated_at = $1"}
	args := []any{meta.UpdatedAt}
	for i, col := range s.mapper.Columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
	}
	args = append(args, s.mapper.Values(rec)...)
	args = append(args, meta.ID)
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d",
		s.mapper.Table, strings.Join(sets, ", "), len(args),
	)
	res, err := s.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update %s: %w", s.mapper.Table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", s.mapper.Table, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres[T]) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.mapper.Table)
	res, err := s.q(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.mapper.Table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.mapper.Table, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres[T]) List(ctx context.Context, filter Filter, page Page) ([]T, int, error) {
	where, args := buildWhere(filter)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", s.mapper.Table, where)
	if err := s.q(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", s.mapper.Table, err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY %s",
		s.selectColumns(), s.mapper.Table, where, s.orderBy(page),
	)
	if page.Limit > 0 {
		args = append(args, page.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if page.Offset > 0 {
		args = append(args, page.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	items, err := s.queryAll(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Postgres[T]) ListAll(ctx context.Context, filter Filter) ([]T, error) {
	where, args := buildWhere(filter)
	query := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY date_ref DESC, created_at DESC",
		s.selectColumns(), s.mapper.Table, where,
	)
	return s.queryAll(ctx, query, args...)
}

func (s *Postgres[T]) queryAll(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.mapper.Table, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", s.mapper.Table, err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", s.mapper.Table, err)
	}
	return items, nil
}

// orderBy accepts only known data columns as the sort field so a caller's
// sort parameter never reaches the query unchecked.
func (s *Postgres[T]) orderBy(page Page) string {
	field := "date_ref"
	desc := true
	if page.Sort != "" && page.Sort != "date_ref" {
		for _, col := range s.mapper.Columns {
			if col == page.Sort {
				field = col
				desc = page.Desc
				break
			}
		}
	} else if page.Sort == "date_ref" {
		desc = page.Desc
	}
	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, created_at DESC, id", field, direction)
}

func buildWhere(filter Filter) (string, []any) {
	conds := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("date_ref >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("date_ref <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
