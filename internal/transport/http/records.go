package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pulseboard/internal/identity"
	"pulseboard/internal/identity/policy"
	"pulseboard/internal/pipeline"
	"pulseboard/internal/records"
	"pulseboard/internal/records/store"
	dErrors "pulseboard/pkg/domain-errors"
	"pulseboard/pkg/platform/httputil"
	"pulseboard/pkg/requestcontext"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// RecordsHandler serves one sector's data and stats routes. One generic
// handler covers all six sectors; only the record and patch types differ.
type RecordsHandler[T records.Record, P pipeline.Patch[T]] struct {
	service  *pipeline.Service[T, P]
	newDraft func() T
	logger   *slog.Logger
}

func NewRecordsHandler[T records.Record, P pipeline.Patch[T]](
	service *pipeline.Service[T, P],
	newDraft func() T,
	logger *slog.Logger,
) *RecordsHandler[T, P] {
	return &RecordsHandler[T, P]{service: service, newDraft: newDraft, logger: logger}
}

// Register mounts the sector routes. Every route runs behind the sector
// access gate: denial is an explicit Forbidden, never an empty result.
func (h *RecordsHandler[T, P]) Register(r chi.Router) {
	r.Route("/"+h.service.Sector(), func(r chi.Router) {
		r.Use(h.requireSectorAccess)
		r.Post("/data", h.handleCreate)
		r.Get("/data", h.handleList)
		r.Get("/data/{id}", h.handleGet)
		r.Put("/data/{id}", h.handleUpdate)
		r.Delete("/data/{id}", h.handleDelete)
		r.Get("/stats", h.handleStats)
	})
}

func (h *RecordsHandler[T, P]) requireSectorAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := identity.PrincipalFromContext(r.Context())
		if !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
			return
		}
		if !policy.CanAccessSector(p, h.service.Sector()) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "no access to sector "+h.service.Sector()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *RecordsHandler[T, P]) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.PrincipalFromContext(r.Context())
	draft := h.newDraft()
	if err := httputil.DecodeInto(r, draft); err != nil {
		httputil.WriteError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), p, draft)
	if err != nil {
		h.logError(r, "create record failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *RecordsHandler[T, P]) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

type listResponse[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

func (h *RecordsHandler[T, P]) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, perPage := parsePagination(r)

	items, total, err := h.service.List(r.Context(), filter, store.Page{
		Limit:  perPage,
		Offset: (page - 1) * perPage,
		Sort:   r.URL.Query().Get("sort"),
		Desc:   r.URL.Query().Get("order") != "asc",
	})
	if err != nil {
		h.logError(r, "list records failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

func (h *RecordsHandler[T, P]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.PrincipalFromContext(r.Context())
	id, err := recordID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	patch, err := httputil.Decode[P](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), p, id, patch)
	if err != nil {
		h.logError(r, "update record failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *RecordsHandler[T, P]) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.PrincipalFromContext(r.Context())
	id, err := recordID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), p, id); err != nil {
		h.logError(r, "delete record failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordsHandler[T, P]) handleStats(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.service.Stats(r.Context(), filter)
	if err != nil {
		h.logError(r, "stats failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *RecordsHandler[T, P]) logError(r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"request_id", requestcontext.RequestID(r.Context()),
		"sector", h.service.Sector(),
		"error", err.Error(),
	)
}

func recordID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid record id")
	}
	return id, nil
}

func parseFilter(r *http.Request) (store.Filter, error) {
	var filter store.Filter
	if raw := r.URL.Query().Get("from"); raw != "" {
		d, err := records.ParseDate(raw)
		if err != nil {
			return store.Filter{}, err
		}
		filter.From = &d
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		d, err := records.ParseDate(raw)
		if err != nil {
			return store.Filter{}, err
		}
		filter.To = &d
	}
	return filter, nil
}

func parsePagination(r *http.Request) (page, perPage int) {
	page = positiveInt(r.URL.Query().Get("page"), 1)
	perPage = positiveInt(r.URL.Query().Get("per_page"), defaultPerPage)
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
