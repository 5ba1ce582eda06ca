package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"securecheck/internal/logger"
	"securecheck/internal/metrics"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func TestTimeOfDay(t *testing.T) {
	counts := map[string]int{}
	for hour := 0; hour < 24; hour++ {
		counts[TimeOfDay(hour)]++
	}

	assert.Equal(t, map[string]int{Morning: 7, Afternoon: 5, Evening: 4, Night: 8}, counts)
	assert.Equal(t, Night, TimeOfDay(4))
	assert.Equal(t, Morning, TimeOfDay(5))
	assert.Equal(t, Morning, TimeOfDay(11))
	assert.Equal(t, Afternoon, TimeOfDay(12))
	assert.Equal(t, Evening, TimeOfDay(20))
	assert.Equal(t, Night, TimeOfDay(21))
}

func TestGeneratedCase(t *testing.T) {
	tod := timeOfDayCase("stop_time")
	assert.Contains(t, tod, "BETWEEN 5 AND 11 THEN 'Morning'")
	assert.Contains(t, tod, "BETWEEN 17 AND 20 THEN 'Evening'")
	assert.True(t, strings.HasSuffix(tod, "ELSE 'Night' END"))

	dur := durationCase("s.stop_duration")
	assert.Equal(t,
		"CASE s.stop_duration WHEN '<5 Min' THEN 3 WHEN '6-15 Min' THEN 10 WHEN '16-30 Min' THEN 23 WHEN '30+ Min' THEN 35 END",
		dur)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, -0.13, Round2(-0.125))
	assert.Equal(t, 66.67, Round2(200.0/3))
	assert.Equal(t, 19.0, Round2(19))
}

func TestDefinitions(t *testing.T) {
	defs := All()
	require.Len(t, defs, 23)

	seen := map[string]bool{}
	for i, d := range defs {
		assert.Equal(t, Query(i+1), d.Query)
		assert.NotEmpty(t, d.Title)
		assert.NotEmpty(t, d.Columns)
		assert.False(t, seen[d.Slug], "duplicate slug %s", d.Slug)
		seen[d.Slug] = true

		q, err := ParseQuery(d.Slug)
		require.NoError(t, err)
		assert.Equal(t, d.Query, q)
		assert.Equal(t, d.Slug, q.String())
	}

	_, err := ParseQuery("no-such-query")
	assert.ErrorIs(t, err, ErrUnknownQuery)

	_, ok := Query(0).Definition()
	assert.False(t, ok)
}

func newMockCatalog(t *testing.T) (*Catalog, sqlmock.Sqlmock) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { db.Close() })

	return New(db, logger.Discard(), metrics.NewMock()), mock
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownQuery", func(t *testing.T) {
		c, _ := newMockCatalog(t)
		_, err := c.Execute(ctx, Query(99))
		assert.ErrorIs(t, err, ErrUnknownQuery)
	})

	t.Run("StorageFailureIsQueryError", func(t *testing.T) {
		c, mock := newMockCatalog(t)
		mock.ExpectQuery("SELECT vehicle_number").WillReturnError(errors.New("connection reset"))

		_, err := c.Execute(ctx, TopDrugRelatedVehicles)
		assert.ErrorIs(t, err, ErrQuery)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoRowsIsEmptyResult", func(t *testing.T) {
		c, mock := newMockCatalog(t)
		mock.ExpectQuery("SELECT vehicle_number").
			WillReturnRows(sqlmock.NewRows([]string{"vehicle_number"}))

		res, err := c.Execute(ctx, TopDrugRelatedVehicles)
		require.NoError(t, err)
		assert.Equal(t, "top-drug-related-vehicles", res.Query)
		assert.Equal(t, []string{"vehicle_number"}, res.Columns)
		assert.NotNil(t, res.Rows)
		assert.Empty(t, res.Rows)
	})

	t.Run("RowsFollowColumnOrder", func(t *testing.T) {
		c, mock := newMockCatalog(t)
		mock.ExpectQuery("SELECT vehicle_number, COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"vehicle_number", "search_count"}).AddRow("V1", int64(4)))

		res, err := c.Execute(ctx, MostSearchedVehicle)
		require.NoError(t, err)
		require.Len(t, res.Rows, 1)
		assert.Equal(t, []any{"V1", int64(4)}, res.Rows[0])
	})
}
