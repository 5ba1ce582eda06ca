// Package ingest bulk-loads traffic-stop CSV exports into the database.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"securecheck/internal/metrics"
	"securecheck/internal/stop"

	"github.com/uptrace/bun"
)

const DefaultBatchSize = 500

// maxReportedErrors caps Report.Errors; Rejected still counts every row.
const maxReportedErrors = 20

type Report struct {
	Read       int        `json:"read"`
	Loaded     int        `json:"loaded"`
	Rejected   int        `json:"rejected"`
	Duplicates int        `json:"duplicates"`
	Errors     []RowError `json:"errors,omitempty"`
}

type Loader struct {
	db        bun.IDB
	logger    *slog.Logger
	metrics   *metrics.Metrics
	batchSize int
}

func NewLoader(db bun.IDB, logger *slog.Logger, m *metrics.Metrics) *Loader {
	return &Loader{
		db:        db,
		logger:    logger,
		metrics:   m,
		batchSize: DefaultBatchSize,
	}
}

// WithBatchSize sets how many rows go into one INSERT.
func (l *Loader) WithBatchSize(n int) *Loader {
	if n > 0 {
		l.batchSize = n
	}
	return l
}

func (l *Loader) LoadFile(ctx context.Context, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return l.Load(ctx, f)
}

// Load parses r and inserts every valid row in one transaction. Vehicles
// already stored are skipped, so loading the same file twice is a no-op.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*Report, error) {
	rows, rejected, err := Parse(r)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Read:     len(rows) + len(rejected),
		Rejected: len(rejected),
	}
	if len(rejected) > maxReportedErrors {
		report.Errors = rejected[:maxReportedErrors]
	} else {
		report.Errors = rejected
	}

	unique := dedupe(rows)
	report.Duplicates = len(rows) - len(unique)

	start := time.Now()
	loaded, err := l.insert(ctx, unique)
	l.metrics.Database.RecordQuery(ctx, "insert", "records", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	report.Loaded = loaded

	l.logger.InfoContext(ctx, "csv load finished",
		"read", report.Read,
		"loaded", report.Loaded,
		"rejected", report.Rejected,
		"duplicates", report.Duplicates,
	)
	return report, nil
}

// dedupe keeps the first row per vehicle number.
func dedupe(rows []Row) []Row {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0:0]
	for _, row := range rows {
		if _, ok := seen[row.Driver.VehicleNumber]; ok {
			continue
		}
		seen[row.Driver.VehicleNumber] = struct{}{}
		out = append(out, row)
	}
	return out
}

func (l *Loader) insert(ctx context.Context, rows []Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	loaded := 0
	err := l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for lo := 0; lo < len(rows); lo += l.batchSize {
			hi := lo + l.batchSize
			if hi > len(rows) {
				hi = len(rows)
			}
			batch := rows[lo:hi]

			drivers := make([]stop.Driver, len(batch))
			stops := make([]stop.Stop, len(batch))
			violations := make([]stop.Violation, len(batch))
			for i, row := range batch {
				drivers[i] = row.Driver
				stops[i] = row.Stop
				violations[i] = row.Violation
			}

			if _, err := insertIgnoringExisting(ctx, tx, &drivers); err != nil {
				return fmt.Errorf("insert drivers: %w", err)
			}
			n, err := insertIgnoringExisting(ctx, tx, &stops)
			if err != nil {
				return fmt.Errorf("insert stops: %w", err)
			}
			if _, err := insertIgnoringExisting(ctx, tx, &violations); err != nil {
				return fmt.Errorf("insert violations: %w", err)
			}
			loaded += n

			l.logger.DebugContext(ctx, "batch inserted", "rows", len(batch), "new_stops", n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return loaded, nil
}

func insertIgnoringExisting(ctx context.Context, tx bun.Tx, model interface{}) (int, error) {
	res, err := tx.NewInsert().
		Model(model).
		On("CONFLICT (vehicle_number) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
