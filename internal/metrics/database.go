package metrics

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Catalog queries aggregate over every stop, so they run far longer than the
// record lookups; the upper buckets exist for them.
var queryBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// DatabaseMetrics times repository and catalog calls per operation and table
// ("records", "stops", a catalog slug) and samples the connection pool.
type DatabaseMetrics struct {
	poolOpen      metric.Int64ObservableGauge
	poolIdle      metric.Int64ObservableGauge
	poolInUse     metric.Int64ObservableGauge
	poolWaits     metric.Int64ObservableCounter
	queryDuration metric.Float64Histogram
	queryErrors   metric.Int64Counter
	pool          *sql.DB
}

func NewDatabaseMetrics(meter metric.Meter) (*DatabaseMetrics, error) {
	dm := &DatabaseMetrics{}

	var err error
	if dm.poolOpen, err = meter.Int64ObservableGauge(
		"securecheck.db.pool.open",
		metric.WithDescription("Open connections in the Postgres pool"),
		metric.WithUnit("{connection}"),
	); err != nil {
		return nil, err
	}
	if dm.poolIdle, err = meter.Int64ObservableGauge(
		"securecheck.db.pool.idle",
		metric.WithDescription("Idle connections in the Postgres pool"),
		metric.WithUnit("{connection}"),
	); err != nil {
		return nil, err
	}
	if dm.poolInUse, err = meter.Int64ObservableGauge(
		"securecheck.db.pool.in_use",
		metric.WithDescription("Connections currently running a query"),
		metric.WithUnit("{connection}"),
	); err != nil {
		return nil, err
	}
	if dm.poolWaits, err = meter.Int64ObservableCounter(
		"securecheck.db.pool.waits",
		metric.WithDescription("Queries that waited for a free connection"),
		metric.WithUnit("{wait}"),
	); err != nil {
		return nil, err
	}
	if dm.queryDuration, err = meter.Float64Histogram(
		"securecheck.db.query.duration",
		metric.WithDescription("Duration of repository, catalog and bulk load statements"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(queryBuckets...),
	); err != nil {
		return nil, err
	}
	if dm.queryErrors, err = meter.Int64Counter(
		"securecheck.db.query.errors",
		metric.WithDescription("Failed statements by error class"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	return dm, nil
}

// RegisterDB samples pool statistics of db on every collection.
func (dm *DatabaseMetrics) RegisterDB(db *sql.DB, meter metric.Meter) error {
	if dm == nil || dm.poolOpen == nil {
		return nil
	}
	dm.pool = db

	_, err := meter.RegisterCallback(dm.observePool,
		dm.poolOpen,
		dm.poolIdle,
		dm.poolInUse,
		dm.poolWaits,
	)
	return err
}

func (dm *DatabaseMetrics) observePool(_ context.Context, o metric.Observer) error {
	if dm.pool == nil {
		return nil
	}
	stats := dm.pool.Stats()
	o.ObserveInt64(dm.poolOpen, int64(stats.OpenConnections))
	o.ObserveInt64(dm.poolIdle, int64(stats.Idle))
	o.ObserveInt64(dm.poolInUse, int64(stats.InUse))
	o.ObserveInt64(dm.poolWaits, stats.WaitCount)
	return nil
}

// RecordQuery times one statement. A missing row is a lookup result, not a
// failure, so it is not counted as an error.
func (dm *DatabaseMetrics) RecordQuery(ctx context.Context, operation string, table string, duration time.Duration, err error) {
	if dm == nil || dm.queryDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("table", table),
	}
	dm.queryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return
	}
	errAttrs := append(attrs, attribute.String("error_class", ErrorClass(err)))
	dm.queryErrors.Add(ctx, 1, metric.WithAttributes(errAttrs...))
}

// ErrorClass buckets err so the error counter keeps a bounded set of labels.
func ErrorClass(err error) string {
	var classed interface{ IntegrityViolation() bool }
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.As(err, &classed) && classed.IntegrityViolation():
		return "constraint"
	default:
		return "other"
	}
}
