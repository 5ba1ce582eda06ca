package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics groups the service counters with the database and messaging
// collectors. A zero Metrics (see NewMock) ignores every Record* call.
type Metrics struct {
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics
	Runtime   *RuntimeMetrics

	queriesExecuted  metric.Int64Counter
	recordsCreated   metric.Int64Counter
	recordsRejected  metric.Int64Counter
	loginAttempts    metric.Int64Counter
	predictionsMade  metric.Int64Counter
	entriesSubmitted metric.Int64Counter
}

func New(serviceName string, logger *slog.Logger) (*Metrics, error) {
	meter := otel.Meter(serviceName)

	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	messaging, err := NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	runtimeMetrics, err := NewRuntimeMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		Database:  database,
		Messaging: messaging,
		Runtime:   runtimeMetrics,
	}

	m.queriesExecuted, err = meter.Int64Counter(
		"securecheck.catalog.queries_executed",
		metric.WithDescription("Total number of catalog queries executed"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}

	m.recordsCreated, err = meter.Int64Counter(
		"securecheck.records.created",
		metric.WithDescription("Total number of driver/stop/violation records created"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	m.recordsRejected, err = meter.Int64Counter(
		"securecheck.records.rejected",
		metric.WithDescription("Total number of record writes rejected by constraints"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	m.loginAttempts, err = meter.Int64Counter(
		"securecheck.auth.login_attempts",
		metric.WithDescription("Officer login attempts by result"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	m.predictionsMade, err = meter.Int64Counter(
		"securecheck.predictions.made",
		metric.WithDescription("Total number of outcome/violation predictions"),
		metric.WithUnit("{prediction}"),
	)
	if err != nil {
		return nil, err
	}

	m.entriesSubmitted, err = meter.Int64Counter(
		"securecheck.entries.submitted",
		metric.WithDescription("Entry form submissions by whether they were saved"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("metrics collectors initialized successfully")
	return m, nil
}

// NewMock creates a no-op Metrics instance for testing
func NewMock() *Metrics {
	return &Metrics{
		Database:  &DatabaseMetrics{},
		Messaging: &MessagingMetrics{},
	}
}

func (m *Metrics) RecordQueryExecuted(ctx context.Context, query string, err error) {
	if m == nil || m.queriesExecuted == nil {
		return
	}
	m.queriesExecuted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("query", query),
		attribute.Bool("failed", err != nil),
	))
}

func (m *Metrics) RecordRecordCreated(ctx context.Context) {
	if m != nil && m.recordsCreated != nil {
		m.recordsCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordRecordRejected(ctx context.Context) {
	if m != nil && m.recordsRejected != nil {
		m.recordsRejected.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLogin(ctx context.Context, success bool) {
	if m != nil && m.loginAttempts != nil {
		m.loginAttempts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	}
}

func (m *Metrics) RecordPrediction(ctx context.Context) {
	if m != nil && m.predictionsMade != nil {
		m.predictionsMade.Add(ctx, 1)
	}
}

func (m *Metrics) RecordEntry(ctx context.Context, saved bool) {
	if m != nil && m.entriesSubmitted != nil {
		m.entriesSubmitted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("saved", saved)))
	}
}
