package entry

import (
	"log/slog"
	"net/http"

	"securecheck/internal/httputil"
	"securecheck/internal/session"
	"securecheck/internal/stop"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/entries", h.Submit)
}

// Submit handles the entry form. The record fields are validated by the
// record writer, and only when the entry is actually saved.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := httputil.DecodeJSON(r, &sub); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Var(string(sub.Role), "required,oneof=viewer officer"); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "role must be viewer or officer")
		return
	}

	out, err := h.service.Submit(r.Context(), session.FromContext(r.Context()), sub)
	if err != nil {
		code := stop.StatusFor(err)
		if code == http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "entry failed", "error", err)
		}
		httputil.RespondWithJSON(w, code, map[string]interface{}{
			"error":      err.Error(),
			"prediction": out.Prediction,
			"saved":      false,
		})
		return
	}

	code := http.StatusOK
	if out.Saved {
		code = http.StatusCreated
	}
	httputil.RespondWithJSON(w, code, out)
}
