package catalog

import (
	"errors"
	"log/slog"
	"net/http"

	"securecheck/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	catalog *Catalog
	logger  *slog.Logger
}

func NewHandler(catalog *Catalog, logger *slog.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/queries", h.ListQueries)
	r.Get("/queries/{slug}", h.ExecuteQuery)
	r.Get("/violations", h.ListViolations)
}

func (h *Handler) ListQueries(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, All())
}

func (h *Handler) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	q, err := ParseQuery(slug)
	if err != nil {
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "executing catalog query", "query", slug)
	res, err := h.catalog.Execute(r.Context(), q)
	if err != nil {
		if errors.Is(err, ErrUnknownQuery) {
			httputil.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		httputil.RespondWithError(w, http.StatusInternalServerError, "Query error: "+slug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, res)
}

func (h *Handler) ListViolations(w http.ResponseWriter, r *http.Request) {
	violations, err := h.catalog.Violations(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list violations", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Query error: violations")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, violations)
}
