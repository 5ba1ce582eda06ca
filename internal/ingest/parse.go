package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"securecheck/internal/stop"
)

// Columns every input file must carry. driver_age_raw may also be present and
// is ignored.
var RequiredColumns = []string{
	"vehicle_number", "driver_gender", "driver_age", "driver_race",
	"stop_date", "stop_time", "stop_duration", "country_name",
	"drugs_related_stop", "search_conducted", "is_arrested", "stop_outcome",
	"violation_raw", "violation", "search_type",
}

var dateLayouts = []string{stop.DateLayout, "1/2/2006", "01/02/2006", "2006/01/02"}

var ErrMissingColumn = errors.New("missing required column")

// Row is one parsed CSV line split into its three tables.
type Row struct {
	Line      int
	Driver    stop.Driver
	Stop      stop.Stop
	Violation stop.Violation
}

// RowError explains why a line was rejected.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Parse reads a traffic-stop CSV. Rows that fail to parse are returned as
// RowErrors; only unreadable input or a bad header is an error.
func Parse(r io.Reader) ([]Row, []RowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	reader.FieldsPerRecord = len(header)

	var (
		rows     []Row
		rejected []RowError
	)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rejected = append(rejected, RowError{Line: line, Reason: parseErr.Err.Error()})
				continue
			}
			return nil, nil, err
		}

		get := func(col string) string {
			return strings.TrimSpace(record[index[col]])
		}
		row, reason := parseRow(get)
		if reason != "" {
			rejected = append(rejected, RowError{Line: line, Reason: reason})
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, rejected, nil
}

func parseRow(get func(string) string) (Row, string) {
	var row Row

	vehicle := get("vehicle_number")
	if vehicle == "" {
		return row, "vehicle_number is empty"
	}
	if len(vehicle) > 20 {
		return row, "vehicle_number longer than 20 characters"
	}

	gender := strings.ToUpper(get("driver_gender"))
	if gender != "M" && gender != "F" {
		return row, fmt.Sprintf("driver_gender %q is not M or F", get("driver_gender"))
	}

	age, err := parseAge(get("driver_age"))
	if err != nil {
		return row, err.Error()
	}

	date, err := parseDate(get("stop_date"))
	if err != nil {
		return row, err.Error()
	}

	clock, err := stop.ParseClock(get("stop_time"))
	if err != nil {
		return row, fmt.Sprintf("stop_time %q is not a time of day", get("stop_time"))
	}

	flags := make(map[string]bool, 3)
	for _, col := range []string{"drugs_related_stop", "search_conducted", "is_arrested"} {
		b, err := ParseBool(get(col))
		if err != nil {
			return row, fmt.Sprintf("%s: %v", col, err)
		}
		flags[col] = b
	}

	row.Driver = stop.Driver{
		VehicleNumber: vehicle,
		Gender:        gender,
		Age:           age,
		AgeGroup:      stop.AgeGroupFor(age),
		Race:          get("driver_race"),
	}
	row.Stop = stop.Stop{
		VehicleNumber:    vehicle,
		SearchType:       get("search_type"),
		StopDate:         date,
		StopTime:         clock,
		StopDuration:     get("stop_duration"),
		CountryName:      get("country_name"),
		DrugsRelatedStop: flags["drugs_related_stop"],
		SearchConducted:  flags["search_conducted"],
		IsArrested:       flags["is_arrested"],
		StopOutcome:      get("stop_outcome"),
	}
	row.Violation = stop.Violation{
		VehicleNumber: vehicle,
		ViolationRaw:  get("violation_raw"),
		Violation:     get("violation"),
	}
	return row, ""
}

func parseAge(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("driver_age %q is not a number", s)
	}
	age := int(f)
	if float64(age) != f || age < stop.MinDriverAge || age > stop.MaxDriverAge {
		return 0, fmt.Errorf("driver_age %q outside 0..120", s)
	}
	return age, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("stop_date %q is not a date", s)
}

// ParseBool accepts true/false, 1/0, yes/no and t/f in any case. Empty is false.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n", "":
		return false, nil
	default:
		return false, fmt.Errorf("%q is not a boolean", s)
	}
}
