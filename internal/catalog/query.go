package catalog

import (
	"fmt"
)

// Query identifies one entry of the analytics catalog.
type Query int

const (
	TopDrugRelatedVehicles Query = iota + 1
	MostSearchedVehicle
	HighestArrestRateAgeGroup
	GenderDistributionByCountry
	RaceGenderHighestSearchRate
	PeakTrafficStopTime
	AverageStopDurationByViolation
	ArrestRateByTimeOfDay
	ViolationSearchArrestStats
	CommonViolationsUnder25
	RarelyFlaggedViolations
	CountryHighestDrugRate
	ArrestRateByCountryViolation
	CountryMostSearches
	YearlyStopsArrestsByCountry
	ViolationTrendsByAgeRace
	TimePeriodStopPatterns
	HighSearchArrestViolations
	DriverDemographicsByCountry
	TopArrestViolations
	OverviewMetrics
	StopsByViolation
	DriverGenderDistribution
)

type Category string

const (
	CategoryVehicle     Category = "vehicle"
	CategoryDemographic Category = "demographic"
	CategoryTime        Category = "time"
	CategoryViolation   Category = "violation"
	CategoryLocation    Category = "location"
	CategoryComplex     Category = "complex"
	CategoryOverview    Category = "overview"
)

// Definition describes a catalog query without running it.
type Definition struct {
	Query    Query    `json:"-"`
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Columns  []string `json:"columns"`
}

var definitions = []Definition{
	{TopDrugRelatedVehicles, "top-drug-related-vehicles", "Top 10 Drug-Related Vehicles", CategoryVehicle,
		[]string{"vehicle_number"}},
	{MostSearchedVehicle, "most-searched-vehicle", "Most Frequently Searched Vehicles", CategoryVehicle,
		[]string{"vehicle_number", "search_count"}},
	{HighestArrestRateAgeGroup, "highest-arrest-rate-age-group", "Highest Arrest Rate by Age Group", CategoryDemographic,
		[]string{"age_group", "arrest_rate"}},
	{GenderDistributionByCountry, "gender-distribution-by-country", "Gender Distribution by Country", CategoryDemographic,
		[]string{"country_name", "driver_gender", "total_stops"}},
	{RaceGenderHighestSearchRate, "race-gender-highest-search-rate", "Race & Gender with Highest Search Rate", CategoryDemographic,
		[]string{"driver_race", "driver_gender", "search_rate_percent"}},
	{PeakTrafficStopTime, "peak-traffic-stop-time", "Peak Traffic Stop Times", CategoryTime,
		[]string{"time_of_day", "total_stops"}},
	{AverageStopDurationByViolation, "average-stop-duration-by-violation", "Average Stop Duration by Violation", CategoryTime,
		[]string{"violation", "avg_duration_minutes"}},
	{ArrestRateByTimeOfDay, "arrest-rate-by-time-of-day", "Are Night Stops More Arrest-Prone?", CategoryTime,
		[]string{"time_of_day", "total_stops", "total_arrests", "arrest_rate_percent"}},
	{ViolationSearchArrestStats, "violation-search-arrest-stats", "Violations with Most Searches/Arrests", CategoryViolation,
		[]string{"violation", "incident_count"}},
	{CommonViolationsUnder25, "common-violations-under-25", "Violations Common < Age 25", CategoryViolation,
		[]string{"violation", "violation_count"}},
	{RarelyFlaggedViolations, "rarely-flagged-violations", "Violations Rarely Leading to Arrest", CategoryViolation,
		[]string{"violation", "search_or_arrest_count"}},
	{CountryHighestDrugRate, "country-highest-drug-rate", "Countries with Highest Drug Stop Rates", CategoryLocation,
		[]string{"country_name", "total_stops", "drug_related_count", "drug_related_rate_percent"}},
	{ArrestRateByCountryViolation, "arrest-rate-by-country-violation", "Arrest Rate by Country & Violation", CategoryLocation,
		[]string{"country_name", "violation", "arrest_rate_percent"}},
	{CountryMostSearches, "country-most-searches", "Country with Most Searches", CategoryLocation,
		[]string{"country_name", "search_conducted_count"}},
	{YearlyStopsArrestsByCountry, "yearly-stops-arrests-by-country", "Yearly Stops & Arrests by Country", CategoryComplex,
		[]string{"country_name", "stop_year", "total_stops", "total_arrests", "arrest_rate_percent", "arrest_rank_in_year"}},
	{ViolationTrendsByAgeRace, "violation-trends-by-age-race", "Violation Trends by Age & Race", CategoryComplex,
		[]string{"age_group", "driver_race", "violation", "violation_count"}},
	{TimePeriodStopPatterns, "time-period-stop-patterns", "Time Period Stop Patterns", CategoryComplex,
		[]string{"year", "month", "hour", "total_stops"}},
	{HighSearchArrestViolations, "high-search-arrest-violations", "High Search+Arrest Violations", CategoryComplex,
		[]string{"violation", "search_rate_percent", "arrest_rate_percent", "search_rank", "arrest_rank"}},
	{DriverDemographicsByCountry, "driver-demographics-by-country", "Driver Demographics by Country", CategoryComplex,
		[]string{"country_name", "avg_driver_age", "male_percentage", "female_percentage", "race_diversity"}},
	{TopArrestViolations, "top-arrest-violations", "Top 5 Arrest-Prone Violations", CategoryComplex,
		[]string{"violation", "total_stops", "total_arrests", "arrest_rate_percent"}},
	{OverviewMetrics, "overview-metrics", "Key Metrics", CategoryOverview,
		[]string{"total_stops", "total_arrests", "total_warnings", "drug_related_stops"}},
	{StopsByViolation, "stops-by-violation", "Stops by Violation Type", CategoryOverview,
		[]string{"violation", "count"}},
	{DriverGenderDistribution, "driver-gender-distribution", "Driver Gender Distribution", CategoryOverview,
		[]string{"driver_gender", "count"}},
}

var bySlug = func() map[string]Query {
	m := make(map[string]Query, len(definitions))
	for _, d := range definitions {
		m[d.Slug] = d.Query
	}
	return m
}()

// All lists every catalog query in catalog order.
func All() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// ParseQuery resolves a slug such as "peak-traffic-stop-time".
func ParseQuery(slug string) (Query, error) {
	if q, ok := bySlug[slug]; ok {
		return q, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownQuery, slug)
}

// Definition returns q's catalog entry.
func (q Query) Definition() (Definition, bool) {
	if q < TopDrugRelatedVehicles || int(q) > len(definitions) {
		return Definition{}, false
	}
	return definitions[q-1], true
}

func (q Query) String() string {
	if d, ok := q.Definition(); ok {
		return d.Slug
	}
	return fmt.Sprintf("Query(%d)", int(q))
}
