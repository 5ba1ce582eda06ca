// Package predict estimates a stop's outcome and violation from the most
// common recorded values and renders a one-paragraph summary.
package predict

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"securecheck/internal/metrics"
)

const (
	FallbackOutcome   = "Warning"
	FallbackViolation = "Speeding"
)

// Input is the driver and stop description entered by the user.
type Input struct {
	DriverAge        int    `json:"driver_age" validate:"min=0,max=120"`
	DriverGender     string `json:"driver_gender" validate:"omitempty,oneof=M F"`
	CountryName      string `json:"country_name"`
	StopDate         string `json:"stop_date"`
	StopTime         string `json:"stop_time"`
	ViolationRaw     string `json:"violation_raw"`
	SearchConducted  bool   `json:"search_conducted"`
	DrugsRelatedStop bool   `json:"drugs_related_stop"`
}

type Prediction struct {
	Outcome   string `json:"predicted_outcome"`
	Violation string `json:"predicted_violation"`
	Summary   string `json:"summary"`
}

type Estimator struct {
	source  Source
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewEstimator(source Source, logger *slog.Logger, m *metrics.Metrics) *Estimator {
	return &Estimator{
		source:  source,
		logger:  logger,
		metrics: m,
	}
}

// Predict never fails: a storage error is logged and treated as no data.
func (e *Estimator) Predict(ctx context.Context, in Input) Prediction {
	outcome, ok, err := e.source.MostCommonOutcome(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "outcome mode unavailable, using fallback", "error", err)
	}
	if err != nil || !ok {
		outcome = FallbackOutcome
	}

	violation, ok, err := e.source.MostCommonViolation(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "violation mode unavailable, using fallback", "error", err)
	}
	if err != nil || !ok {
		violation = FallbackViolation
		if raw := strings.TrimSpace(in.ViolationRaw); raw != "" {
			violation = raw
		}
	}

	e.metrics.RecordPrediction(ctx)

	return Prediction{
		Outcome:   outcome,
		Violation: violation,
		Summary:   Summarize(in, outcome, violation),
	}
}

// Summarize renders the natural-language prediction summary.
func Summarize(in Input, outcome, violation string) string {
	reason := in.ViolationRaw
	if strings.TrimSpace(reason) == "" {
		reason = violation
	}

	search := "no search was conducted"
	if in.SearchConducted {
		search = "a search was conducted"
	}

	drugs := "was not drug-related"
	if in.DrugsRelatedStop {
		drugs = "was drug-related"
	}

	return fmt.Sprintf(
		"A %d-year-old %s driver from %s was stopped on %s at %s for %s. "+
			"Based on similar past data, the stop outcome is likely %s, and %s. The stop %s.",
		in.DriverAge, in.DriverGender, in.CountryName, in.StopDate, in.StopTime, reason,
		outcome, search, drugs,
	)
}
