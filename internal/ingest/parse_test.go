package ingest

import (
	"strings"
	"testing"

	"securecheck/internal/stop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "stop_date,stop_time,country_name,driver_gender,driver_age_raw,driver_age,driver_race," +
	"violation_raw,violation,search_conducted,search_type,stop_outcome,is_arrested,stop_duration," +
	"drugs_related_stop,vehicle_number\n"

func TestParse(t *testing.T) {
	t.Run("ValidRows", func(t *testing.T) {
		input := header +
			"2020-01-15,14:30,Canada,M,1995,25,Asian,Speeding,Speeding,True,Frisk,Citation,False,0-15 Min,False,V1\n" +
			"1/2/2021,08:05:00,India,f,1950,70,White,DUI,DUI,0,,Arrest,1,30+ Min,yes,V2\n"

		rows, rejected, err := Parse(strings.NewReader(input))
		require.NoError(t, err)
		assert.Empty(t, rejected)
		require.Len(t, rows, 2)

		first := rows[0]
		assert.Equal(t, 2, first.Line)
		assert.Equal(t, "V1", first.Driver.VehicleNumber)
		assert.Equal(t, stop.AgeGroupYoungAdult, first.Driver.AgeGroup)
		assert.Equal(t, "14:30:00", first.Stop.StopTime)
		assert.True(t, first.Stop.SearchConducted)
		assert.False(t, first.Stop.IsArrested)
		assert.Equal(t, "Frisk", first.Stop.SearchType)

		second := rows[1]
		assert.Equal(t, "F", second.Driver.Gender)
		assert.Equal(t, stop.AgeGroupMiddleAge, second.Driver.AgeGroup)
		assert.Equal(t, "2021-01-02", second.Stop.StopDate.Format(stop.DateLayout))
		assert.True(t, second.Stop.IsArrested)
		assert.True(t, second.Stop.DrugsRelatedStop)
		assert.Equal(t, "DUI", second.Violation.Violation)
	})

	t.Run("RejectsBadRows", func(t *testing.T) {
		input := header +
			"2020-01-15,14:30,Canada,M,,25,Asian,Speeding,Speeding,True,,Citation,False,0-15 Min,False,\n" +
			"2020-01-15,14:30,Canada,X,,25,Asian,Speeding,Speeding,True,,Citation,False,0-15 Min,False,V2\n" +
			"2020-01-15,14:30,Canada,M,,130,Asian,Speeding,Speeding,True,,Citation,False,0-15 Min,False,V3\n" +
			"not-a-date,14:30,Canada,M,,25,Asian,Speeding,Speeding,True,,Citation,False,0-15 Min,False,V4\n" +
			"2020-01-15,later,Canada,M,,25,Asian,Speeding,Speeding,True,,Citation,False,0-15 Min,False,V5\n" +
			"2020-01-15,14:30,Canada,M,,25,Asian,Speeding,Speeding,maybe,,Citation,False,0-15 Min,False,V6\n" +
			"2020-01-15,14:30,Canada\n" +
			"2020-01-15,14:30,Canada,M,,25.0,Asian,Speeding,Speeding,True,,Citation,False,0-15 Min,False,V8\n"

		rows, rejected, err := Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "V8", rows[0].Driver.VehicleNumber)
		require.Len(t, rejected, 7)
		assert.Equal(t, 2, rejected[0].Line)
		assert.Contains(t, rejected[2].Reason, "driver_age")
		assert.Contains(t, rejected[3].Reason, "stop_date")
	})

	t.Run("MissingColumn", func(t *testing.T) {
		_, _, err := Parse(strings.NewReader("vehicle_number,driver_gender\nV1,M\n"))
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		_, _, err := Parse(strings.NewReader(""))
		assert.Error(t, err)
	})
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "TRUE", "True", "1", "yes", "Y", "t"} {
		b, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.True(t, b, s)
	}
	for _, s := range []string{"false", "False", "0", "no", "N", ""} {
		b, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.False(t, b, s)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}

func TestDedupe(t *testing.T) {
	rows := []Row{
		{Line: 2, Driver: stop.Driver{VehicleNumber: "V1"}},
		{Line: 3, Driver: stop.Driver{VehicleNumber: "V2"}},
		{Line: 4, Driver: stop.Driver{VehicleNumber: "V1"}},
	}
	out := dedupe(rows)
	require.Len(t, out, 2)
	assert.Equal(t, 2, out[0].Line)
	assert.Equal(t, 3, out[1].Line)
}
