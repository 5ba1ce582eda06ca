package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"securecheck/internal/health"
	"securecheck/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestHandler(t *testing.T) {
	get := func(p health.Pinger, path string) (*httptest.ResponseRecorder, health.HealthResponse) {
		r := chi.NewRouter()
		health.NewHandler(p, logger.Discard()).RegisterRoutes(r)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		var body health.HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		return w, body
	}

	t.Run("Health", func(t *testing.T) {
		w, body := get(fakePinger{err: errors.New("down")}, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", body.Status)
	})

	t.Run("Ready", func(t *testing.T) {
		w, body := get(fakePinger{}, "/ready")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ready", body.Status)
	})

	t.Run("NotReady", func(t *testing.T) {
		w, body := get(fakePinger{err: errors.New("connection refused")}, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unavailable", body.Status)
	})
}
