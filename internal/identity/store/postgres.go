package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pulseboard/internal/identity"
	"pulseboard/pkg/platform/sentinel"
	txcontext "pulseboard/pkg/platform/tx"
	"pulseboard/pkg/requestcontext"
)

const uniqueViolation = "23505"

// Postgres persists principals in the principals table. The unique index on
// lower(email) is the authoritative guard against duplicate registration.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const principalColumns = "id, email, name, role, sector, password_hash, active, created_at, updated_at"

func (s *Postgres) Create(ctx context.Context, p *identity.Principal) error {
	const query = `
		INSERT INTO principals (` + principalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		p.ID, strings.ToLower(strings.TrimSpace(p.Email)), p.Name, string(p.Role), p.Sector,
		p.PasswordHash, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create principal: %w", err)
	}
	return nil
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*identity.Principal, error) {
	const query = "SELECT " + principalColumns + " FROM principals WHERE email = $1"
	return s.scanOne(s.execer(ctx).QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))), "find principal by email")
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*identity.Principal, error) {
	const query = "SELECT " + principalColumns + " FROM principals WHERE id = $1"
	return s.scanOne(s.execer(ctx).QueryRowContext(ctx, query, id), "find principal by id")
}

func (s *Postgres) List(ctx context.Context, filter Filter, limit, offset int) ([]*identity.Principal, int, error) {
	conds := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.Sector != "" {
		args = append(args, filter.Sector)
		conds = append(conds, fmt.Sprintf("lower(sector) = lower($%d)", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conds = append(conds, fmt.Sprintf("active = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.execer(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM principals"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count principals: %w", err)
	}

	query := "SELECT " + principalColumns + " FROM principals" + where + " ORDER BY created_at, id"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list principals: %w", err)
	}
	defer rows.Close()

	principals := make([]*identity.Principal, 0)
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan principal: %w", err)
		}
		principals = append(principals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate principals: %w", err)
	}
	return principals, total, nil
}

func (s *Postgres) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	const query = "UPDATE principals SET active = $1, updated_at = $2 WHERE id = $3"
	res, err := s.execer(ctx).ExecContext(ctx, query, active, requestcontext.Now(ctx), id)
	if err != nil {
		return fmt.Errorf("set principal active: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set principal active: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Postgres) scanOne(row rowScanner, op string) (*identity.Principal, error) {
	p, err := scanPrincipal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func scanPrincipal(row rowScanner) (*identity.Principal, error) {
	var (
		p    identity.Principal
		role string
	)
	if err := row.Scan(&p.ID, &p.Email, &p.Name, &role, &p.Sector, &p.PasswordHash, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Role = identity.Role(role)
	return &p, nil
}
