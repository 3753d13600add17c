package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pulseboard/internal/audit"
	"pulseboard/internal/identity"
	"pulseboard/internal/identity/policy"
	dErrors "pulseboard/pkg/domain-errors"
	"pulseboard/pkg/platform/httputil"
	"pulseboard/pkg/requestcontext"
)

// AuditHandler exposes the trail for Director review.
type AuditHandler struct {
	recorder *audit.Recorder
	logger   *slog.Logger
}

func NewAuditHandler(recorder *audit.Recorder, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{recorder: recorder, logger: logger}
}

func (h *AuditHandler) Register(r chi.Router) {
	r.Get("/audit", h.handleList)
}

type auditListResponse struct {
	Items []audit.Entry `json:"items"`
	Total int           `json:"total"`
}

func (h *AuditHandler) handleList(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if !policy.HasRole(p, identity.RoleDirector) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "audit review requires Director"))
		return
	}

	filter := audit.Filter{
		TableName: r.URL.Query().Get("table"),
		Action:    audit.Action(r.URL.Query().Get("action")),
	}
	if raw := r.URL.Query().Get("actor_id"); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid actor id"))
			return
		}
		filter.ActorID = actorID
	}
	page, perPage := parsePagination(r)

	entries, total, err := h.recorder.List(r.Context(), filter, perPage, (page-1)*perPage)
	if err != nil {
		h.logger.WarnContext(r.Context(), "audit list failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "list audit entries"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, auditListResponse{Items: entries, Total: total})
}
