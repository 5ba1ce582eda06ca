package predict_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"securecheck/internal/logger"
	"securecheck/internal/metrics"
	"securecheck/internal/predict"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	outcome, violation string
	err                error
}

func (f fakeSource) MostCommonOutcome(context.Context) (string, bool, error) {
	return f.outcome, f.outcome != "", f.err
}

func (f fakeSource) MostCommonViolation(context.Context) (string, bool, error) {
	return f.violation, f.violation != "", f.err
}

func sampleInput() predict.Input {
	return predict.Input{
		DriverAge:        25,
		DriverGender:     "M",
		CountryName:      "Canada",
		StopDate:         "2020-01-15",
		StopTime:         "14:30:00",
		ViolationRaw:     "",
		SearchConducted:  true,
		DrugsRelatedStop: false,
	}
}

func TestEstimator_Predict(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyDatasetFallsBack", func(t *testing.T) {
		e := predict.NewEstimator(fakeSource{}, logger.Discard(), metrics.NewMock())

		p := e.Predict(ctx, sampleInput())
		assert.Equal(t, "Warning", p.Outcome)
		assert.Equal(t, "Speeding", p.Violation)
	})

	t.Run("EmptyDatasetUsesRawViolation", func(t *testing.T) {
		e := predict.NewEstimator(fakeSource{}, logger.Discard(), metrics.NewMock())

		in := sampleInput()
		in.ViolationRaw = "Seatbelt"
		p := e.Predict(ctx, in)
		assert.Equal(t, "Warning", p.Outcome)
		assert.Equal(t, "Seatbelt", p.Violation)
	})

	t.Run("BlankRawViolationIgnored", func(t *testing.T) {
		e := predict.NewEstimator(fakeSource{}, logger.Discard(), metrics.NewMock())

		in := sampleInput()
		in.ViolationRaw = "   "
		assert.Equal(t, "Speeding", e.Predict(ctx, in).Violation)
	})

	t.Run("UsesMostCommonValues", func(t *testing.T) {
		src := fakeSource{outcome: "Citation", violation: "DUI"}
		e := predict.NewEstimator(src, logger.Discard(), metrics.NewMock())

		in := sampleInput()
		in.ViolationRaw = "Seatbelt"
		p := e.Predict(ctx, in)
		assert.Equal(t, "Citation", p.Outcome)
		assert.Equal(t, "DUI", p.Violation)
		assert.Contains(t, p.Summary, "for Seatbelt.")
	})

	t.Run("StorageErrorDegradesToFallback", func(t *testing.T) {
		src := fakeSource{outcome: "Citation", violation: "DUI", err: errors.New("db down")}
		e := predict.NewEstimator(src, logger.Discard(), metrics.NewMock())

		p := e.Predict(ctx, sampleInput())
		assert.Equal(t, "Warning", p.Outcome)
		assert.Equal(t, "Speeding", p.Violation)
	})
}

func TestSummarize(t *testing.T) {
	in := sampleInput()
	assert.Equal(t,
		"A 25-year-old M driver from Canada was stopped on 2020-01-15 at 14:30:00 for Speeding. "+
			"Based on similar past data, the stop outcome is likely Warning, and a search was conducted. "+
			"The stop was not drug-related.",
		predict.Summarize(in, "Warning", "Speeding"))

	in.SearchConducted = false
	in.DrugsRelatedStop = true
	summary := predict.Summarize(in, "Arrest", "DUI")
	assert.Contains(t, summary, "for DUI.")
	assert.Contains(t, summary, "and no search was conducted.")
	assert.Contains(t, summary, "The stop was drug-related.")
}

func TestHandler_Predict(t *testing.T) {
	e := predict.NewEstimator(fakeSource{outcome: "Citation"}, logger.Discard(), metrics.NewMock())
	r := chi.NewRouter()
	predict.NewHandler(e, logger.Discard()).RegisterRoutes(r)

	t.Run("Success", func(t *testing.T) {
		body, _ := json.Marshal(sampleInput())
		req := httptest.NewRequest(http.MethodPost, "/predictions", bytes.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var p predict.Prediction
		require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
		assert.Equal(t, "Citation", p.Outcome)
		assert.Equal(t, "Speeding", p.Violation)
		assert.NotEmpty(t, p.Summary)
	})

	t.Run("InvalidAge", func(t *testing.T) {
		in := sampleInput()
		in.DriverAge = 150
		body, _ := json.Marshal(in)
		req := httptest.NewRequest(http.MethodPost, "/predictions", bytes.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
