package catalog

// Row types for the catalog queries. NULL labels scan as "".

type vehicleRow struct {
	VehicleNumber string `bun:"vehicle_number"`
}

type vehicleCountRow struct {
	VehicleNumber string `bun:"vehicle_number"`
	SearchCount   int64  `bun:"search_count"`
}

type ageGroupRateRow struct {
	AgeGroup   string  `bun:"age_group"`
	ArrestRate float64 `bun:"arrest_rate"`
}

type countryGenderRow struct {
	CountryName  string `bun:"country_name"`
	DriverGender string `bun:"driver_gender"`
	TotalStops   int64  `bun:"total_stops"`
}

type raceGenderRateRow struct {
	DriverRace        string  `bun:"driver_race"`
	DriverGender      string  `bun:"driver_gender"`
	SearchRatePercent float64 `bun:"search_rate_percent"`
}

type timeOfDayRow struct {
	TimeOfDay  string `bun:"time_of_day"`
	TotalStops int64  `bun:"total_stops"`
}

type violationDurationRow struct {
	Violation          string   `bun:"violation"`
	AvgDurationMinutes *float64 `bun:"avg_duration_minutes"`
}

type timeOfDayArrestRow struct {
	TimeOfDay         string  `bun:"time_of_day"`
	TotalStops        int64   `bun:"total_stops"`
	TotalArrests      int64   `bun:"total_arrests"`
	ArrestRatePercent float64 `bun:"arrest_rate_percent"`
}

// violationCountRow serves the violation queries that differ only in the
// name of their count column.
type violationCountRow struct {
	Violation           string `bun:"violation"`
	IncidentCount       int64  `bun:"incident_count"`
	ViolationCount      int64  `bun:"violation_count"`
	SearchOrArrestCount int64  `bun:"search_or_arrest_count"`
}

type countryDrugRow struct {
	CountryName            string  `bun:"country_name"`
	TotalStops             int64   `bun:"total_stops"`
	DrugRelatedCount       int64   `bun:"drug_related_count"`
	DrugRelatedRatePercent float64 `bun:"drug_related_rate_percent"`
}

type countryViolationRateRow struct {
	CountryName       string  `bun:"country_name"`
	Violation         string  `bun:"violation"`
	ArrestRatePercent float64 `bun:"arrest_rate_percent"`
}

type countryCountRow struct {
	CountryName          string `bun:"country_name"`
	SearchConductedCount int64  `bun:"search_conducted_count"`
}

type yearlyCountryRow struct {
	CountryName       string  `bun:"country_name"`
	StopYear          int     `bun:"stop_year"`
	TotalStops        int64   `bun:"total_stops"`
	TotalArrests      int64   `bun:"total_arrests"`
	ArrestRatePercent float64 `bun:"arrest_rate_percent"`
	ArrestRankInYear  int64   `bun:"arrest_rank_in_year"`
}

type ageRaceViolationRow struct {
	AgeGroup       string `bun:"age_group"`
	DriverRace     string `bun:"driver_race"`
	Violation      string `bun:"violation"`
	ViolationCount int64  `bun:"violation_count"`
}

type timePeriodRow struct {
	Year       int   `bun:"year"`
	Month      int   `bun:"month"`
	Hour       int   `bun:"hour"`
	TotalStops int64 `bun:"total_stops"`
}

type violationRankRow struct {
	Violation         string  `bun:"violation"`
	SearchRatePercent float64 `bun:"search_rate_percent"`
	ArrestRatePercent float64 `bun:"arrest_rate_percent"`
	SearchRank        int64   `bun:"search_rank"`
	ArrestRank        int64   `bun:"arrest_rank"`
}

type countryDemographicsRow struct {
	CountryName      string  `bun:"country_name"`
	AvgDriverAge     float64 `bun:"avg_driver_age"`
	MalePercentage   float64 `bun:"male_percentage"`
	FemalePercentage float64 `bun:"female_percentage"`
	RaceDiversity    int64   `bun:"race_diversity"`
}

type violationArrestRow struct {
	Violation         string  `bun:"violation"`
	TotalStops        int64   `bun:"total_stops"`
	TotalArrests      int64   `bun:"total_arrests"`
	ArrestRatePercent float64 `bun:"arrest_rate_percent"`
}

type overviewRow struct {
	TotalStops       int64 `bun:"total_stops"`
	TotalArrests     int64 `bun:"total_arrests"`
	TotalWarnings    int64 `bun:"total_warnings"`
	DrugRelatedStops int64 `bun:"drug_related_stops"`
}

type labelCountRow struct {
	Violation    string `bun:"violation"`
	DriverGender string `bun:"driver_gender"`
	Count        int64  `bun:"count"`
}
