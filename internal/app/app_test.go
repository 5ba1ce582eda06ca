package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"securecheck/internal/app"
	"securecheck/internal/auth"
	"securecheck/internal/config"
	"securecheck/internal/logger"
	"securecheck/internal/metrics"
	"securecheck/internal/officer"
	"securecheck/testing/testdb"
	"securecheck/testing/testnats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_EndToEnd(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	ctx := context.Background()
	testdb.Reset(t, pgContainer.DB)
	_, err := officer.NewRepository(pgContainer.DB, metrics.NewMock()).Seed(ctx, officer.SampleSeeds)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:  "test",
		Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTLMinutes: 15},
		Server: config.ServerConfig{
			CORSOrigins: []string{"http://localhost:8501"},
		},
	}
	router := app.NewRouter(cfg, pgContainer.DB, nil, logger.Discard(), metrics.NewMock())

	do := func(method, path string, payload interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
		var body bytes.Buffer
		if payload != nil {
			require.NoError(t, json.NewEncoder(&body).Encode(payload))
		}
		req := httptest.NewRequest(method, path, &body)
		req.Header.Set("Content-Type", "application/json")
		if cookie != nil {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	login := func(username, password string) *http.Cookie {
		w := do(http.MethodPost, "/auth/login", map[string]string{"username": username, "password": password}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		for _, c := range w.Result().Cookies() {
			if c.Name == auth.CookieName {
				return c
			}
		}
		t.Fatal("login did not set a token cookie")
		return nil
	}

	entryPayload := map[string]interface{}{
		"role":           "officer",
		"vehicle_number": "V900",
		"driver_gender":  "F",
		"driver_age":     42,
		"stop_date":      "2021-06-01",
		"stop_time":      "08:15",
		"country_name":   "Canada",
		"violation_raw":  "Speeding",
	}

	t.Run("Health", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(http.MethodGet, "/health", nil, nil).Code)
		assert.Equal(t, http.StatusOK, do(http.MethodGet, "/ready", nil, nil).Code)
	})

	t.Run("CatalogIsPublic", func(t *testing.T) {
		w := do(http.MethodGet, "/api/queries", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = do(http.MethodGet, "/api/queries/no-such-query", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("AnonymousEntryNotSaved", func(t *testing.T) {
		w := do(http.MethodPost, "/api/entries", entryPayload, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = do(http.MethodGet, "/api/records/V900", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("OfficerEntrySaved", func(t *testing.T) {
		cookie := login("entry1", "entrypass")

		w := do(http.MethodPost, "/api/entries", entryPayload, cookie)
		require.Equal(t, http.StatusCreated, w.Code)

		w = do(http.MethodGet, "/api/records/V900", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var rec map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&rec))
		stopRow := rec["stop"].(map[string]interface{})
		assert.Equal(t, "A2", stopRow["added_by"])

		w = do(http.MethodPost, "/api/entries", entryPayload, cookie)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("DeleteNeedsAdmin", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(http.MethodDelete, "/api/records/V900", nil, nil).Code)

		entryCookie := login("entry1", "entrypass")
		assert.Equal(t, http.StatusForbidden, do(http.MethodDelete, "/api/records/V900", nil, entryCookie).Code)

		adminCookie := login("admin1", "adminpass")
		assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/api/records/V900", nil, adminCookie).Code)
		assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/api/records/V900", nil, nil).Code)
	})
}

func TestNewEventProducer_Disabled(t *testing.T) {
	m := metrics.NewMock()

	assert.Nil(t, app.NewEventProducer(config.EventsConfig{}, logger.Discard(), m))
	assert.Nil(t, app.NewEventProducer(config.EventsConfig{Driver: "carrier-pigeon"}, logger.Discard(), m))
}

func TestNewEventProducer_NATS(t *testing.T) {
	natsContainer := testnats.SetupSharedNATS(t)
	defer natsContainer.Cleanup(t)

	sub := natsContainer.Subscribe(t, "securecheck.records.>")

	p := app.NewEventProducer(config.EventsConfig{
		Driver: app.EventsNATS,
		NATS:   config.NATSConfig{URL: natsContainer.URL, Subject: "securecheck.records"},
	}, logger.Discard(), metrics.NewMock())
	require.NotNil(t, p)
	defer p.Close()

	require.NoError(t, p.SendMessage(context.Background(), "V900", map[string]string{"type": "record.created"}))
	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "securecheck.records.V900", msg.Subject)
}
