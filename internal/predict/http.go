package predict

import (
	"log/slog"
	"net/http"

	"securecheck/internal/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	estimator *Estimator
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewHandler(estimator *Estimator, logger *slog.Logger) *Handler {
	return &Handler{
		estimator: estimator,
		validate:  validator.New(),
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/predictions", h.Predict)
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httputil.DecodeJSON(r, &in); err != nil || h.validate.Struct(&in) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, h.estimator.Predict(r.Context(), in))
}
