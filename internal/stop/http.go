package stop

import (
	"errors"
	"log/slog"
	"net/http"

	"securecheck/internal/httputil"
	"securecheck/internal/session"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stops", h.ListStops)
	r.Get("/records/{vehicle}", h.GetRecord)
	r.Delete("/records/{vehicle}", h.DeleteRecord)
}

func (h *Handler) ListStops(w http.ResponseWriter, r *http.Request) {
	limit := httputil.QueryInt(r, "limit", DefaultPageSize)
	offset := httputil.QueryInt(r, "offset", 0)

	h.logger.InfoContext(r.Context(), "listing stops", "limit", limit, "offset", offset)
	stops, err := h.service.ListStops(r.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if stops == nil {
		stops = []Stop{}
	}
	httputil.RespondWithJSON(w, http.StatusOK, stops)
}

func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	vehicle := chi.URLParam(r, "vehicle")

	rec, err := h.service.GetRecord(r.Context(), vehicle)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, rec)
}

// DeleteRecord removes a driver and everything stopped under that vehicle.
// With ?scope=stop only the stop and its violation are removed.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if !sess.IsAuthenticated() {
		httputil.RespondWithError(w, http.StatusUnauthorized, "Login required")
		return
	}
	if !sess.IsAdmin() {
		httputil.RespondWithError(w, http.StatusForbidden, "Admin role required")
		return
	}

	vehicle := chi.URLParam(r, "vehicle")
	var err error
	if r.URL.Query().Get("scope") == "stop" {
		err = h.service.DeleteStop(r.Context(), vehicle)
	} else {
		err = h.service.DeleteDriver(r.Context(), vehicle)
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "record deleted",
		"vehicle_number", vehicle,
		"officer_id", sess.OfficerID(),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, ErrRecordNotFound):
		h.logger.InfoContext(ctx, "record not found")
		httputil.RespondWithError(w, http.StatusNotFound, "Record not found")
	case errors.Is(err, ErrInvalidInput):
		h.logger.InfoContext(ctx, "invalid input", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrConstraintViolation):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(ctx, "internal server error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// StatusFor maps a record writer error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrConstraintViolation):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
