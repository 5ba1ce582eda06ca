package entry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"securecheck/internal/entry"
	"securecheck/internal/logger"
	"securecheck/internal/metrics"
	"securecheck/internal/officer"
	"securecheck/internal/predict"
	"securecheck/internal/session"
	"securecheck/internal/stop"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecords struct {
	stop.Service
	created []stop.Record
	err     error
}

func (f *fakeRecords) CreateRecord(_ context.Context, rec *stop.Record) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *rec)
	return nil
}

type fakeSource struct{ outcome, violation string }

func (f fakeSource) MostCommonOutcome(context.Context) (string, bool, error) {
	return f.outcome, f.outcome != "", nil
}

func (f fakeSource) MostCommonViolation(context.Context) (string, bool, error) {
	return f.violation, f.violation != "", nil
}

type fakeProducer struct {
	keys   []string
	events []entry.RecordCreated
	err    error
}

func (f *fakeProducer) SendMessage(_ context.Context, key string, value interface{}) error {
	f.keys = append(f.keys, key)
	if ev, ok := value.(entry.RecordCreated); ok {
		f.events = append(f.events, ev)
	}
	return f.err
}

func newService(records *fakeRecords, producer *fakeProducer) *entry.Service {
	est := predict.NewEstimator(fakeSource{outcome: "Citation", violation: "DUI"}, logger.Discard(), metrics.NewMock())
	var p entry.Producer
	if producer != nil {
		p = producer
	}
	return entry.NewService(records, est, p, logger.Discard(), metrics.NewMock())
}

func submission(role session.Role) entry.Submission {
	return entry.Submission{
		Role: role,
		Record: stop.Record{
			VehicleNumber: "V123",
			DriverGender:  "M",
			DriverAge:     25,
			StopDate:      "2020-01-15",
			StopTime:      "14:30",
			CountryName:   "Canada",
			ViolationRaw:  "Speeding",
		},
	}
}

func officerSession(id string) *session.Session {
	s := session.New()
	s.Authenticate(&officer.Officer{ID: id, Role: officer.RoleDataEntry})
	return s
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("ViewerGetsPredictionOnly", func(t *testing.T) {
		records, producer := &fakeRecords{}, &fakeProducer{}
		svc := newService(records, producer)

		out, err := svc.Submit(ctx, officerSession("A2"), submission(session.RoleViewer))
		require.NoError(t, err)
		assert.False(t, out.Saved)
		assert.Equal(t, entry.NoticeViewer, out.Notice)
		assert.Equal(t, "Citation", out.Prediction.Outcome)
		assert.Empty(t, records.created)
		assert.Empty(t, producer.events)
	})

	t.Run("AnonymousOfficerNotSaved", func(t *testing.T) {
		records := &fakeRecords{}
		svc := newService(records, nil)

		out, err := svc.Submit(ctx, session.New(), submission(session.RoleOfficer))
		require.NoError(t, err)
		assert.False(t, out.Saved)
		assert.Equal(t, entry.NoticeLoginRequired, out.Notice)
		assert.Empty(t, records.created)
	})

	t.Run("AuthenticatedOfficerSaves", func(t *testing.T) {
		records, producer := &fakeRecords{}, &fakeProducer{}
		svc := newService(records, producer)

		out, err := svc.Submit(ctx, officerSession("A2"), submission(session.RoleOfficer))
		require.NoError(t, err)
		assert.True(t, out.Saved)
		assert.Equal(t, "V123", out.VehicleNumber)

		require.Len(t, records.created, 1)
		rec := records.created[0]
		assert.Equal(t, "A2", rec.AddedBy)
		assert.Equal(t, "Citation", rec.StopOutcome)
		assert.Equal(t, "DUI", rec.Violation)
		assert.Equal(t, "Speeding", rec.ViolationRaw)

		require.Len(t, producer.events, 1)
		ev := producer.events[0]
		assert.Equal(t, entry.EventRecordCreated, ev.Type)
		assert.Equal(t, "V123", ev.VehicleNumber)
		assert.Equal(t, "A2", ev.AddedBy)
		assert.NotEmpty(t, ev.EventID)
		assert.Equal(t, []string{"V123"}, producer.keys)
	})

	t.Run("EnteredOutcomeIsKept", func(t *testing.T) {
		records := &fakeRecords{}
		svc := newService(records, nil)

		sub := submission(session.RoleOfficer)
		sub.StopOutcome = "Arrest"
		sub.Violation = "Seatbelt"
		_, err := svc.Submit(ctx, officerSession("A1"), sub)
		require.NoError(t, err)

		require.Len(t, records.created, 1)
		assert.Equal(t, "Arrest", records.created[0].StopOutcome)
		assert.Equal(t, "Seatbelt", records.created[0].Violation)
	})

	t.Run("WriteFailureIsReturned", func(t *testing.T) {
		records := &fakeRecords{err: fmt.Errorf("%w: duplicate key", stop.ErrConstraintViolation)}
		producer := &fakeProducer{}
		svc := newService(records, producer)

		out, err := svc.Submit(ctx, officerSession("A2"), submission(session.RoleOfficer))
		assert.ErrorIs(t, err, stop.ErrConstraintViolation)
		require.NotNil(t, out)
		assert.False(t, out.Saved)
		assert.Equal(t, "Citation", out.Prediction.Outcome)
		assert.Empty(t, producer.events)
	})

	t.Run("PublishFailureDoesNotFailEntry", func(t *testing.T) {
		records := &fakeRecords{}
		producer := &fakeProducer{err: errors.New("nats: connection closed")}
		svc := newService(records, producer)

		out, err := svc.Submit(ctx, officerSession("A2"), submission(session.RoleOfficer))
		require.NoError(t, err)
		assert.True(t, out.Saved)
		assert.Len(t, producer.events, 1)
	})
}

func TestHandler_Submit(t *testing.T) {
	newRouter := func(svc *entry.Service, sess *session.Session) chi.Router {
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(session.NewContext(req.Context(), sess)))
			})
		})
		entry.NewHandler(svc, logger.Discard()).RegisterRoutes(r)
		return r
	}

	post := func(r chi.Router, payload interface{}) *httptest.ResponseRecorder {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("Saved", func(t *testing.T) {
		r := newRouter(newService(&fakeRecords{}, nil), officerSession("A2"))
		w := post(r, submission(session.RoleOfficer))

		assert.Equal(t, http.StatusCreated, w.Code)
		var out entry.Outcome
		require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
		assert.True(t, out.Saved)
	})

	t.Run("ViewerOK", func(t *testing.T) {
		r := newRouter(newService(&fakeRecords{}, nil), session.New())
		w := post(r, submission(session.RoleViewer))

		assert.Equal(t, http.StatusOK, w.Code)
		var out entry.Outcome
		require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
		assert.False(t, out.Saved)
		assert.NotEmpty(t, out.Prediction.Summary)
	})

	t.Run("Conflict", func(t *testing.T) {
		records := &fakeRecords{err: fmt.Errorf("%w: duplicate key", stop.ErrConstraintViolation)}
		r := newRouter(newService(records, nil), officerSession("A2"))
		w := post(r, submission(session.RoleOfficer))

		assert.Equal(t, http.StatusConflict, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Contains(t, body, "prediction")
	})

	t.Run("UnknownRole", func(t *testing.T) {
		r := newRouter(newService(&fakeRecords{}, nil), session.New())
		sub := submission(session.RoleViewer)
		sub.Role = "auditor"
		w := post(r, sub)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
