// Package httptransport wires the HTTP surface: middleware chain, public
// health and metrics endpoints, and the authenticated API routes.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "pulseboard/internal/identity/handler"
	dErrors "pulseboard/pkg/domain-errors"
	"pulseboard/pkg/platform/httputil"
	"pulseboard/pkg/platform/middleware/metadata"
	"pulseboard/pkg/platform/middleware/recovery"
	"pulseboard/pkg/platform/middleware/requestid"
	"pulseboard/pkg/platform/middleware/requestlog"
	"pulseboard/pkg/platform/middleware/requesttime"
)

// Registrar mounts a set of routes on the router.
type Registrar interface {
	Register(r chi.Router)
}

// Deps collects everything the router serves.
type Deps struct {
	Logger    *slog.Logger
	Auth      *authhandler.Handler
	Resolver  authhandler.Resolver
	Protected []Registrar
	Health    func(ctx context.Context) error
}

// NewRouter builds the full route tree. /healthz and /metrics are public;
// /auth manages its own split; everything else requires a resolved principal.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(recovery.Middleware(deps.Logger))
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(requestlog.Middleware(deps.Logger))

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	deps.Auth.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(authhandler.RequireAuth(deps.Resolver))
		for _, registrar := range deps.Protected {
			registrar.Register(r)
		}
	})

	return r
}

func handleHealth(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "health check failed"))
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
