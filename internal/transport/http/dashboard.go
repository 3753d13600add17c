package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pulseboard/internal/dashboard"
	"pulseboard/internal/identity"
	dErrors "pulseboard/pkg/domain-errors"
	"pulseboard/pkg/platform/httputil"
	"pulseboard/pkg/requestcontext"
)

// DashboardHandler serves the cross-sector overview.
type DashboardHandler struct {
	service *dashboard.Service
	logger  *slog.Logger
}

func NewDashboardHandler(service *dashboard.Service, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{service: service, logger: logger}
}

func (h *DashboardHandler) Register(r chi.Router) {
	r.Get("/dashboard/overview", h.handleOverview)
}

func (h *DashboardHandler) handleOverview(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	overview, err := h.service.Overview(r.Context(), p, filter)
	if err != nil {
		h.logger.WarnContext(r.Context(), "overview failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}
