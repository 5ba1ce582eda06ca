package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	Morning   = "Morning"
	Afternoon = "Afternoon"
	Evening   = "Evening"
	Night     = "Night"
)

// timeOfDayBuckets are inclusive hour ranges; any other hour is Night.
var timeOfDayBuckets = []struct {
	label    string
	from, to int
}{
	{Morning, 5, 11},
	{Afternoon, 12, 16},
	{Evening, 17, 20},
}

// TimeOfDay labels an hour of the day (0..23).
func TimeOfDay(hour int) string {
	for _, b := range timeOfDayBuckets {
		if hour >= b.from && hour <= b.to {
			return b.label
		}
	}
	return Night
}

// timeOfDayCase renders TimeOfDay as a SQL CASE over a time column.
func timeOfDayCase(column string) string {
	var sb strings.Builder
	sb.WriteString("CASE")
	for _, b := range timeOfDayBuckets {
		fmt.Fprintf(&sb, " WHEN EXTRACT(HOUR FROM %s) BETWEEN %d AND %d THEN '%s'", column, b.from, b.to, b.label)
	}
	fmt.Fprintf(&sb, " ELSE '%s' END", Night)
	return sb.String()
}

// DurationMinutes maps stop_duration labels to representative minutes.
// Labels not listed have no numeric value.
var DurationMinutes = map[string]int{
	"<5 Min":    3,
	"6-15 Min":  10,
	"16-30 Min": 23,
	"30+ Min":   35,
}

// durationCase renders DurationMinutes as a SQL CASE; unmapped labels yield NULL.
func durationCase(column string) string {
	labels := make([]string, 0, len(DurationMinutes))
	for label := range DurationMinutes {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return DurationMinutes[labels[i]] < DurationMinutes[labels[j]]
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "CASE %s", column)
	for _, label := range labels {
		fmt.Fprintf(&sb, " WHEN '%s' THEN %d", label, DurationMinutes[label])
	}
	sb.WriteString(" END")
	return sb.String()
}

// percent renders the share of rows matching cond as a percentage rounded to
// two places. Groups are never empty, the NULLIF only guards the division.
func percent(cond string) string {
	return fmt.Sprintf("ROUND(COUNT(CASE WHEN %s THEN 1 END)::numeric / NULLIF(COUNT(*), 0) * 100, 2)", cond)
}

func countWhere(cond string) string {
	return fmt.Sprintf("COUNT(CASE WHEN %s THEN 1 END)", cond)
}

// Round2 rounds half away from zero to two decimals, as ROUND(numeric, 2) does.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
