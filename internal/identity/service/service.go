// Package service implements registration, login, session resolution and
// principal administration.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"pulseboard/internal/audit"
	"pulseboard/internal/identity"
	"pulseboard/internal/identity/password"
	"pulseboard/internal/identity/policy"
	"pulseboard/internal/identity/store"
	"pulseboard/internal/identity/token"
	"pulseboard/internal/platform/metrics"
	"pulseboard/internal/records"
	dErrors "pulseboard/pkg/domain-errors"
	"pulseboard/pkg/platform/sentinel"
	"pulseboard/pkg/platform/tx"
	"pulseboard/pkg/requestcontext"
)

// Service owns principal lifecycle and session resolution.
type Service struct {
	store    store.Store
	tokens   *token.Service
	recorder *audit.Recorder
	runner   tx.Runner
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(st store.Store, tokens *token.Service, recorder *audit.Recorder, runner tx.Runner, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		tokens:   tokens,
		recorder: recorder,
		runner:   runner,
		metrics:  m,
		logger:   logger,
	}
}

// RegisterInput is a registration request.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     string
	Sector   string
}

// Register creates a new active principal.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*identity.Principal, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a valid email is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	role, ok := identity.ParseRole(input.Role)
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown role "+input.Role)
	}
	sector := strings.TrimSpace(input.Sector)
	if role == identity.RoleEmployee {
		if sector == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "sector is required for employees")
		}
		normalized, err := records.NormalizeSector(sector)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "unknown sector "+sector)
		}
		sector = normalized
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	p := &identity.Principal{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
		Sector:       sector,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, p); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "email already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "create principal")
		}
		return s.recorder.Record(ctx, p.ID, audit.ActionCreate, "principals", p.ID, nil, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Session is an issued token with its expiry and the authenticated principal.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal *identity.Principal
}

// Login verifies credentials and issues a session token. Unknown email,
// wrong password and deactivated principals all fail with the same
// Unauthorized answer so login probes learn nothing.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (*Session, error) {
	invalid := dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

	p, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementLogin("failure")
			return nil, invalid
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find principal")
	}
	if !p.Active {
		s.metrics.IncrementLogin("failure")
		return nil, invalid
	}
	if err := password.Verify(plainPassword, p.PasswordHash); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.metrics.IncrementLogin("failure")
			return nil, invalid
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "verify password")
	}

	now := requestcontext.Now(ctx)
	signed, err := s.tokens.Issue(p.Email, string(p.Role), now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "issue token")
	}

	s.metrics.IncrementLogin("success")
	return &Session{
		Token:     signed,
		ExpiresAt: now.Add(s.tokens.TTL()),
		Principal: p,
	}, nil
}

// Resolve turns a bearer token into the authenticated principal. Runs fresh
// on every request; there is no session cache, so deactivation takes effect
// on the next request.
func (s *Service) Resolve(ctx context.Context, bearer string) (*identity.Principal, error) {
	claims, err := s.tokens.Verify(bearer, requestcontext.Now(ctx))
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		default:
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
		}
	}
	p, err := s.store.FindByEmail(ctx, claims.Subject())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unknown principal")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find principal")
	}
	if !p.Active {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "principal deactivated")
	}
	return p, nil
}

// ListPrincipals lists principals for administration. Directors see
// everyone; managers see their own sector. Ordered by creation time.
func (s *Service) ListPrincipals(ctx context.Context, requester *identity.Principal, limit, offset int) ([]*identity.Principal, int, error) {
	if !policy.HasRole(requester, identity.RoleManager) {
		return nil, 0, dErrors.New(dErrors.CodeForbidden, "insufficient role")
	}
	filter := store.Filter{}
	if requester.Role != identity.RoleDirector {
		filter.Sector = requester.Sector
	}
	items, total, err := s.store.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "list principals")
	}
	return items, total, nil
}

// Deactivate soft-deletes a principal. Requires Director; self-deactivation
// is forbidden so a deployment can never lock out its last administrator.
// Deactivating an already-inactive principal succeeds as a no-op.
func (s *Service) Deactivate(ctx context.Context, requester *identity.Principal, targetID uuid.UUID) error {
	if !policy.HasRole(requester, identity.RoleDirector) {
		return dErrors.New(dErrors.CodeForbidden, "insufficient role")
	}
	if requester.ID == targetID {
		return dErrors.New(dErrors.CodeForbidden, "self-deactivation is forbidden")
	}

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		target, err := s.store.FindByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "principal not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "find principal")
		}
		if !target.Active {
			return nil
		}
		if err := s.store.SetActive(ctx, targetID, false); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "deactivate principal")
		}
		return s.recorder.Record(ctx, requester.ID, audit.ActionUpdate, "principals", targetID,
			map[string]any{"active": true}, map[string]any{"active": false})
	})
	if err != nil {
		return err
	}

	s.metrics.IncrementDeactivated()
	return nil
}

// Permissions is the access summary for a principal.
type Permissions struct {
	Role           identity.Role   `json:"role"`
	Rank           int             `json:"rank"`
	Sectors        map[string]bool `json:"sectors"`
	CanManageUsers bool            `json:"can_manage_users"`
}

// CheckPermissions reports what the principal may do, per sector.
func (s *Service) CheckPermissions(p *identity.Principal) Permissions {
	sectors := make(map[string]bool, len(records.Sectors()))
	for _, sector := range records.Sectors() {
		sectors[sector] = policy.CanAccessSector(p, sector)
	}
	return Permissions{
		Role:           p.Role,
		Rank:           p.Role.Rank(),
		Sectors:        sectors,
		CanManageUsers: policy.HasRole(p, identity.RoleDirector),
	}
}

// EnsureAdmin creates the bootstrap Director account when it does not exist
// yet. Called at startup behind a config flag.
func (s *Service) EnsureAdmin(ctx context.Context, email, plainPassword string) error {
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "find admin principal")
	}

	_, err := s.Register(ctx, RegisterInput{
		Email:    email,
		Name:     adminDisplayName(email),
		Password: plainPassword,
		Role:     string(identity.RoleDirector),
		Sector:   "administration",
	})
	if err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", "email", email)
	return nil
}

// adminDisplayName turns the bootstrap email's local part into a readable
// principal name ("kpi.admin@example.edu" becomes "Kpi Admin").
func adminDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Administrator"
	}
	for i, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
