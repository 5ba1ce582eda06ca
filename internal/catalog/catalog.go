// Package catalog runs the fixed library of read-only traffic-stop analytics.
//
// Every query is parameterless and side-effect free. A query that matches no
// data returns an empty Result; only storage failures are errors, and those
// are wrapped in ErrQuery.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"securecheck/internal/metrics"

	"github.com/uptrace/bun"
)

var (
	ErrQuery        = errors.New("query failed")
	ErrUnknownQuery = errors.New("unknown query")
)

// Result is the tabular output of one catalog query.
type Result struct {
	Query    string   `json:"query"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
}

type Catalog struct {
	db      bun.IDB
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(db bun.IDB, logger *slog.Logger, m *metrics.Metrics) *Catalog {
	return &Catalog{
		db:      db,
		logger:  logger,
		metrics: m,
	}
}

// Execute runs q and returns its rows in the catalog's column order.
func (c *Catalog) Execute(ctx context.Context, q Query) (*Result, error) {
	def, ok := q.Definition()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, q)
	}

	start := time.Now()
	rows, err := c.run(ctx, q)
	c.metrics.Database.RecordQuery(ctx, "select", def.Slug, time.Since(start), err)
	c.metrics.RecordQueryExecuted(ctx, def.Slug, err)

	if err != nil {
		if errors.Is(err, ErrUnknownQuery) {
			return nil, err
		}
		c.logger.ErrorContext(ctx, "catalog query failed", "query", def.Slug, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrQuery, def.Slug, err)
	}

	if rows == nil {
		rows = [][]any{}
	}
	return &Result{
		Query:    def.Slug,
		Title:    def.Title,
		Category: def.Category,
		Columns:  def.Columns,
		Rows:     rows,
	}, nil
}

// Violations returns the distinct violation labels in sorted order.
func (c *Catalog) Violations(ctx context.Context) ([]string, error) {
	start := time.Now()
	var violations []string
	err := c.db.NewRaw(`
		SELECT DISTINCT violation
		FROM violations
		WHERE violation IS NOT NULL
		ORDER BY violation`).Scan(ctx, &violations)

	c.metrics.Database.RecordQuery(ctx, "select", "violations", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("%w: violations: %v", ErrQuery, err)
	}
	if violations == nil {
		violations = []string{}
	}
	return violations, nil
}

func (c *Catalog) run(ctx context.Context, q Query) ([][]any, error) {
	switch q {
	case TopDrugRelatedVehicles:
		return collect(ctx, c.db, `
			SELECT vehicle_number
			FROM stops
			WHERE drugs_related_stop = TRUE
			LIMIT 10`,
			func(r *vehicleRow) []any { return []any{r.VehicleNumber} })

	case MostSearchedVehicle:
		return collect(ctx, c.db, `
			SELECT vehicle_number, COUNT(*) AS search_count
			FROM stops
			WHERE search_conducted = TRUE
			GROUP BY vehicle_number
			ORDER BY search_count DESC
			LIMIT 1`,
			func(r *vehicleCountRow) []any { return []any{r.VehicleNumber, r.SearchCount} })

	case HighestArrestRateAgeGroup:
		return collect(ctx, c.db, `
			SELECT d.age_group, `+percent("s.is_arrested")+` AS arrest_rate
			FROM drivers d
			JOIN stops s ON d.vehicle_number = s.vehicle_number
			GROUP BY d.age_group
			ORDER BY arrest_rate DESC
			LIMIT 1`,
			func(r *ageGroupRateRow) []any { return []any{r.AgeGroup, r.ArrestRate} })

	case GenderDistributionByCountry:
		return collect(ctx, c.db, `
			SELECT s.country_name, d.driver_gender, COUNT(*) AS total_stops
			FROM drivers d
			JOIN stops s ON d.vehicle_number = s.vehicle_number
			GROUP BY s.country_name, d.driver_gender
			ORDER BY s.country_name, d.driver_gender`,
			func(r *countryGenderRow) []any { return []any{r.CountryName, r.DriverGender, r.TotalStops} })

	case RaceGenderHighestSearchRate:
		return collect(ctx, c.db, `
			SELECT d.driver_race, d.driver_gender, `+percent("s.search_conducted")+` AS search_rate_percent
			FROM drivers d
			JOIN stops s ON d.vehicle_number = s.vehicle_number
			GROUP BY d.driver_race, d.driver_gender
			ORDER BY search_rate_percent DESC
			LIMIT 1`,
			func(r *raceGenderRateRow) []any { return []any{r.DriverRace, r.DriverGender, r.SearchRatePercent} })

	case PeakTrafficStopTime:
		return collect(ctx, c.db, `
			SELECT `+timeOfDayCase("stop_time")+` AS time_of_day, COUNT(*) AS total_stops
			FROM stops
			GROUP BY time_of_day
			ORDER BY total_stops DESC
			LIMIT 1`,
			func(r *timeOfDayRow) []any { return []any{r.TimeOfDay, r.TotalStops} })

	case AverageStopDurationByViolation:
		return collect(ctx, c.db, `
			SELECT v.violation, ROUND(AVG(`+durationCase("s.stop_duration")+`), 2) AS avg_duration_minutes
			FROM stops s
			JOIN violations v ON v.vehicle_number = s.vehicle_number
			GROUP BY v.violation
			ORDER BY avg_duration_minutes DESC NULLS LAST`,
			func(r *violationDurationRow) []any { return []any{r.Violation, r.AvgDurationMinutes} })

	case ArrestRateByTimeOfDay:
		return collect(ctx, c.db, `
			SELECT `+timeOfDayCase("stop_time")+` AS time_of_day,
				COUNT(*) AS total_stops,
				`+countWhere("is_arrested")+` AS total_arrests,
				`+percent("is_arrested")+` AS arrest_rate_percent
			FROM stops
			GROUP BY time_of_day
			ORDER BY arrest_rate_percent DESC`,
			func(r *timeOfDayArrestRow) []any {
				return []any{r.TimeOfDay, r.TotalStops, r.TotalArrests, r.ArrestRatePercent}
			})

	case ViolationSearchArrestStats:
		return collect(ctx, c.db, `
			SELECT v.violation, COUNT(*) AS incident_count
			FROM violations v
			JOIN stops s ON s.vehicle_number = v.vehicle_number
			WHERE s.search_conducted = TRUE OR s.is_arrested = TRUE
			GROUP BY v.violation
			ORDER BY incident_count DESC`,
			func(r *violationCountRow) []any { return []any{r.Violation, r.IncidentCount} })

	case CommonViolationsUnder25:
		return collect(ctx, c.db, `
			SELECT v.violation, COUNT(*) AS violation_count
			FROM violations v
			JOIN drivers d ON d.vehicle_number = v.vehicle_number
			WHERE d.driver_age < 25
			GROUP BY v.violation
			ORDER BY violation_count DESC`,
			func(r *violationCountRow) []any { return []any{r.Violation, r.ViolationCount} })

	case RarelyFlaggedViolations:
		return collect(ctx, c.db, `
			SELECT v.violation, `+countWhere("s.search_conducted = TRUE OR s.is_arrested = TRUE")+` AS search_or_arrest_count
			FROM violations v
			JOIN stops s ON v.vehicle_number = s.vehicle_number
			GROUP BY v.violation
			ORDER BY search_or_arrest_count ASC
			LIMIT 1`,
			func(r *violationCountRow) []any { return []any{r.Violation, r.SearchOrArrestCount} })

	case CountryHighestDrugRate:
		return collect(ctx, c.db, `
			SELECT country_name,
				COUNT(*) AS total_stops,
				`+countWhere("drugs_related_stop")+` AS drug_related_count,
				`+percent("drugs_related_stop")+` AS drug_related_rate_percent
			FROM stops
			GROUP BY country_name
			ORDER BY drug_related_rate_percent DESC
			LIMIT 1`,
			func(r *countryDrugRow) []any {
				return []any{r.CountryName, r.TotalStops, r.DrugRelatedCount, r.DrugRelatedRatePercent}
			})

	case ArrestRateByCountryViolation:
		return collect(ctx, c.db, `
			SELECT s.country_name, v.violation, `+percent("s.is_arrested")+` AS arrest_rate_percent
			FROM stops s
			JOIN violations v ON s.vehicle_number = v.vehicle_number
			GROUP BY s.country_name, v.violation
			ORDER BY arrest_rate_percent DESC`,
			func(r *countryViolationRateRow) []any { return []any{r.CountryName, r.Violation, r.ArrestRatePercent} })

	case CountryMostSearches:
		return collect(ctx, c.db, `
			SELECT country_name, COUNT(*) AS search_conducted_count
			FROM stops
			WHERE search_conducted = TRUE
			GROUP BY country_name
			ORDER BY search_conducted_count DESC
			LIMIT 1`,
			func(r *countryCountRow) []any { return []any{r.CountryName, r.SearchConductedCount} })

	case YearlyStopsArrestsByCountry:
		return collect(ctx, c.db, `
			SELECT country_name,
				stop_year,
				total_stops,
				total_arrests,
				ROUND(total_arrests::numeric / NULLIF(total_stops, 0) * 100, 2) AS arrest_rate_percent,
				RANK() OVER (PARTITION BY stop_year ORDER BY total_arrests DESC) AS arrest_rank_in_year
			FROM (
				SELECT country_name,
					EXTRACT(YEAR FROM stop_date)::int AS stop_year,
					COUNT(*) AS total_stops,
					`+countWhere("is_arrested")+` AS total_arrests
				FROM stops
				GROUP BY country_name, EXTRACT(YEAR FROM stop_date)
			) AS yearly_stats
			ORDER BY stop_year, arrest_rank_in_year`,
			func(r *yearlyCountryRow) []any {
				return []any{r.CountryName, r.StopYear, r.TotalStops, r.TotalArrests, r.ArrestRatePercent, r.ArrestRankInYear}
			})

	case ViolationTrendsByAgeRace:
		return collect(ctx, c.db, `
			SELECT d.age_group, d.driver_race, v.violation, COUNT(*) AS violation_count
			FROM drivers d
			JOIN violations v ON d.vehicle_number = v.vehicle_number
			WHERE v.violation IS NOT NULL
			GROUP BY d.age_group, d.driver_race, v.violation
			ORDER BY violation_count DESC`,
			func(r *ageRaceViolationRow) []any {
				return []any{r.AgeGroup, r.DriverRace, r.Violation, r.ViolationCount}
			})

	case TimePeriodStopPatterns:
		return collect(ctx, c.db, `
			SELECT EXTRACT(YEAR FROM stop_date)::int AS year,
				EXTRACT(MONTH FROM stop_date)::int AS month,
				EXTRACT(HOUR FROM stop_time)::int AS hour,
				COUNT(*) AS total_stops
			FROM stops
			GROUP BY 1, 2, 3
			ORDER BY 1, 2, 3`,
			func(r *timePeriodRow) []any { return []any{r.Year, r.Month, r.Hour, r.TotalStops} })

	case HighSearchArrestViolations:
		return collect(ctx, c.db, `
			SELECT v.violation,
				`+percent("s.search_conducted")+` AS search_rate_percent,
				`+percent("s.is_arrested")+` AS arrest_rate_percent,
				RANK() OVER (ORDER BY `+countWhere("s.search_conducted")+`::numeric / COUNT(*) DESC) AS search_rank,
				RANK() OVER (ORDER BY `+countWhere("s.is_arrested")+`::numeric / COUNT(*) DESC) AS arrest_rank
			FROM violations v
			JOIN stops s ON v.vehicle_number = s.vehicle_number
			GROUP BY v.violation
			ORDER BY search_rank, arrest_rank`,
			func(r *violationRankRow) []any {
				return []any{r.Violation, r.SearchRatePercent, r.ArrestRatePercent, r.SearchRank, r.ArrestRank}
			})

	case DriverDemographicsByCountry:
		return collect(ctx, c.db, `
			SELECT s.country_name,
				ROUND(AVG(d.driver_age), 1) AS avg_driver_age,
				`+percent("d.driver_gender = 'M'")+` AS male_percentage,
				`+percent("d.driver_gender = 'F'")+` AS female_percentage,
				COUNT(DISTINCT d.driver_race) AS race_diversity
			FROM drivers d
			JOIN stops s ON d.vehicle_number = s.vehicle_number
			GROUP BY s.country_name
			ORDER BY avg_driver_age DESC`,
			func(r *countryDemographicsRow) []any {
				return []any{r.CountryName, r.AvgDriverAge, r.MalePercentage, r.FemalePercentage, r.RaceDiversity}
			})

	case TopArrestViolations:
		return collect(ctx, c.db, `
			SELECT v.violation,
				COUNT(*) AS total_stops,
				`+countWhere("s.is_arrested")+` AS total_arrests,
				`+percent("s.is_arrested")+` AS arrest_rate_percent
			FROM violations v
			JOIN stops s ON v.vehicle_number = s.vehicle_number
			GROUP BY v.violation
			ORDER BY arrest_rate_percent DESC
			LIMIT 5`,
			func(r *violationArrestRow) []any {
				return []any{r.Violation, r.TotalStops, r.TotalArrests, r.ArrestRatePercent}
			})

	case OverviewMetrics:
		return collect(ctx, c.db, `
			SELECT COUNT(*) AS total_stops,
				`+countWhere("LOWER(stop_outcome) = 'arrest'")+` AS total_arrests,
				`+countWhere("LOWER(stop_outcome) = 'warning'")+` AS total_warnings,
				`+countWhere("drugs_related_stop")+` AS drug_related_stops
			FROM stops`,
			func(r *overviewRow) []any {
				return []any{r.TotalStops, r.TotalArrests, r.TotalWarnings, r.DrugRelatedStops}
			})

	case StopsByViolation:
		return collect(ctx, c.db, `
			SELECT violation, COUNT(*) AS count
			FROM violations
			WHERE violation IS NOT NULL
			GROUP BY violation
			ORDER BY count DESC, violation`,
			func(r *labelCountRow) []any { return []any{r.Violation, r.Count} })

	case DriverGenderDistribution:
		return collect(ctx, c.db, `
			SELECT driver_gender, COUNT(*) AS count
			FROM drivers
			GROUP BY driver_gender
			ORDER BY count DESC, driver_gender`,
			func(r *labelCountRow) []any { return []any{r.DriverGender, r.Count} })

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, q)
	}
}

// collect scans query into T rows and flattens each with row.
func collect[T any](ctx context.Context, db bun.IDB, query string, row func(*T) []any) ([][]any, error) {
	var items []T
	if err := db.NewRaw(query).Scan(ctx, &items); err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(items))
	for i := range items {
		rows = append(rows, row(&items[i]))
	}
	return rows, nil
}
