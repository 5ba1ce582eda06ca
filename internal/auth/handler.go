package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"securecheck/internal/httputil"
	"securecheck/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service      *Service
	logger       *slog.Logger
	validator    *validator.Validate
	secureCookie bool
}

func NewHandler(service *Service, logger *slog.Logger, secureCookie bool) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		validator:    validator.New(),
		secureCookie: secureCookie,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.Get("/auth/session", h.Session)
}

// Login authenticates an officer
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.WarnContext(r.Context(), "validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(r.Context(), "officer logged in",
		"officer_id", resp.Officer.ID,
		"role", resp.Officer.Role,
	)

	SetAuthCookie(w, resp.AccessToken, int(h.service.tokens.TTL().Seconds()), h.secureCookie)
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// Session reports the state of the caller's session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"state":   sess.State().String(),
		"officer": sess.Officer(),
	})
}
