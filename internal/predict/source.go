package predict

import (
	"context"
	"fmt"
	"time"

	"securecheck/internal/metrics"

	"github.com/uptrace/bun"
)

// Source supplies the most common recorded values. ok is false when no
// non-null value exists.
type Source interface {
	MostCommonOutcome(ctx context.Context) (value string, ok bool, err error)
	MostCommonViolation(ctx context.Context) (value string, ok bool, err error)
}

type dbSource struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewSource(db bun.IDB, m *metrics.Metrics) Source {
	return &dbSource{
		db:      db,
		metrics: m,
	}
}

func (s *dbSource) MostCommonOutcome(ctx context.Context) (string, bool, error) {
	return s.mode(ctx, "stops", "stop_outcome")
}

func (s *dbSource) MostCommonViolation(ctx context.Context) (string, bool, error) {
	return s.mode(ctx, "violations", "violation")
}

// mode returns the most frequent non-null value of table.column. Ties go to
// the lexicographically smallest value.
func (s *dbSource) mode(ctx context.Context, table, column string) (string, bool, error) {
	start := time.Now()
	var values []string
	err := s.db.NewRaw(`
		SELECT ? FROM ?
		WHERE ? IS NOT NULL
		GROUP BY ?
		ORDER BY COUNT(*) DESC, ? COLLATE "C" ASC
		LIMIT 1`,
		bun.Ident(column), bun.Ident(table), bun.Ident(column), bun.Ident(column), bun.Ident(column),
	).Scan(ctx, &values)

	s.metrics.Database.RecordQuery(ctx, "select", table, time.Since(start), err)

	if err != nil {
		return "", false, fmt.Errorf("mode of %s.%s: %w", table, column, err)
	}
	if len(values) == 0 {
		return "", false, nil
	}
	return values[0], true, nil
}
