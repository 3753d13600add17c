// Package handler exposes the /auth endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pulseboard/internal/identity"
	"pulseboard/internal/identity/service"
	dErrors "pulseboard/pkg/domain-errors"
	"pulseboard/pkg/platform/httputil"
	"pulseboard/pkg/requestcontext"
)

// Service is the identity surface the handler depends on.
type Service interface {
	Register(ctx context.Context, input service.RegisterInput) (*identity.Principal, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	Resolve(ctx context.Context, bearer string) (*identity.Principal, error)
	ListPrincipals(ctx context.Context, requester *identity.Principal, limit, offset int) ([]*identity.Principal, int, error)
	Deactivate(ctx context.Context, requester *identity.Principal, targetID uuid.UUID) error
	CheckPermissions(p *identity.Principal) service.Permissions
}

// Handler serves authentication and principal administration.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the /auth routes. Login and registration are public; the
// rest require a resolved principal.
func (h *Handler) Register(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(h.service))
			r.Get("/me", h.handleMe)
			r.Post("/logout", h.handleLogout)
			r.Get("/check-permissions", h.handleCheckPermissions)
			r.Get("/users", h.handleListUsers)
			r.Post("/users/{id}/deactivate", h.handleDeactivate)
		})
	})
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Sector   string `json:"sector"`
}

type principalResponse struct {
	ID        uuid.UUID     `json:"id"`
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	Role      identity.Role `json:"role"`
	Sector    string        `json:"sector,omitempty"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
}

func toPrincipalResponse(p *identity.Principal) principalResponse {
	return principalResponse{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Role:      p.Role,
		Sector:    p.Sector,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.Decode[registerRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
		Sector:   req.Sector,
	})
	if err != nil {
		h.logError(r.Context(), "register failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPrincipalResponse(p))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresAt   time.Time         `json:"expires_at"`
	User        principalResponse `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.Decode[loginRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logError(r.Context(), "login failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: session.Token,
		TokenType:   "bearer",
		ExpiresAt:   session.ExpiresAt,
		User:        toPrincipalResponse(session.Principal),
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPrincipalResponse(p))
}

// handleLogout exists for client symmetry. Tokens are stateless and simply
// expire; the client discards its copy.
func (h *Handler) handleLogout(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCheckPermissions(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.service.CheckPermissions(p))
}

type listUsersResponse struct {
	Items []principalResponse `json:"items"`
	Total int                 `json:"total"`
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	items, total, err := h.service.ListPrincipals(r.Context(), p, limit, offset)
	if err != nil {
		h.logError(r.Context(), "list users failed", err)
		httputil.WriteError(w, err)
		return
	}
	resp := listUsersResponse{Items: make([]principalResponse, 0, len(items)), Total: total}
	for _, item := range items {
		resp.Items = append(resp.Items, toPrincipalResponse(item))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid principal id"))
		return
	}
	if err := h.service.Deactivate(r.Context(), p, targetID); err != nil {
		h.logError(r.Context(), "deactivate failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
