package stop

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type AgeGroup string

const (
	AgeGroupTeen       AgeGroup = "Teen"
	AgeGroupYoungAdult AgeGroup = "Young Adult"
	AgeGroupAdult      AgeGroup = "Adult"
	AgeGroupMiddleAge  AgeGroup = "Middle Age"
	AgeGroupSenior     AgeGroup = "Senior"
)

const (
	MinDriverAge = 0
	MaxDriverAge = 120
)

// ageBuckets are right-closed: a bucket holds ages in (previous upper, upper].
var ageBuckets = []struct {
	upper int
	group AgeGroup
}{
	{18, AgeGroupTeen},
	{30, AgeGroupYoungAdult},
	{50, AgeGroupAdult},
	{70, AgeGroupMiddleAge},
	{MaxDriverAge, AgeGroupSenior},
}

// AgeGroupFor buckets a driver age. Age 0 falls in Teen; ages outside
// [0,120] have no group and return "".
func AgeGroupFor(age int) AgeGroup {
	if age < MinDriverAge || age > MaxDriverAge {
		return ""
	}
	for _, b := range ageBuckets {
		if age <= b.upper {
			return b.group
		}
	}
	return ""
}

// AgeGroups lists the groups in ascending age order.
func AgeGroups() []AgeGroup {
	groups := make([]AgeGroup, len(ageBuckets))
	for i, b := range ageBuckets {
		groups[i] = b.group
	}
	return groups
}

type Driver struct {
	bun.BaseModel `bun:"table:drivers,alias:d"`

	VehicleNumber string   `bun:"vehicle_number,pk,type:varchar(20)" json:"vehicle_number"`
	Gender        string   `bun:"driver_gender,type:char(1)" json:"driver_gender"`
	Age           int      `bun:"driver_age,type:integer" json:"driver_age"`
	AgeGroup      AgeGroup `bun:"age_group,type:varchar(20),nullzero" json:"age_group"`
	Race          string   `bun:"driver_race,type:varchar(50),nullzero" json:"driver_race"`
}

// Stop is keyed by vehicle_number, so a vehicle has at most one stop.
type Stop struct {
	bun.BaseModel `bun:"table:stops,alias:s"`

	VehicleNumber    string    `bun:"vehicle_number,pk,type:varchar(20)" json:"vehicle_number"`
	SearchType       string    `bun:"search_type,type:varchar(100),nullzero" json:"search_type"`
	StopDate         time.Time `bun:"stop_date,type:date,notnull" json:"stop_date"`
	StopTime         string    `bun:"stop_time,type:time,notnull" json:"stop_time"`
	StopDuration     string    `bun:"stop_duration,type:varchar(20),nullzero" json:"stop_duration"`
	CountryName      string    `bun:"country_name,type:varchar(50),nullzero" json:"country_name"`
	DrugsRelatedStop bool      `bun:"drugs_related_stop,notnull,default:false" json:"drugs_related_stop"`
	SearchConducted  bool      `bun:"search_conducted,notnull,default:false" json:"search_conducted"`
	IsArrested       bool      `bun:"is_arrested,notnull,default:false" json:"is_arrested"`
	StopOutcome      string    `bun:"stop_outcome,type:varchar(50),nullzero" json:"stop_outcome"`
	AddedBy          *string   `bun:"added_by,type:text" json:"added_by,omitempty"`
}

type Violation struct {
	bun.BaseModel `bun:"table:violations,alias:v"`

	VehicleNumber string `bun:"vehicle_number,pk,type:varchar(20)" json:"vehicle_number"`
	ViolationRaw  string `bun:"violation_raw,type:varchar(100),nullzero" json:"violation_raw"`
	Violation     string `bun:"violation,type:varchar(50),nullzero" json:"violation"`
}

// StoredRecord is the driver/stop/violation triple for one vehicle.
type StoredRecord struct {
	Driver    Driver     `json:"driver"`
	Stop      Stop       `json:"stop"`
	Violation *Violation `json:"violation,omitempty"`
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Record is the flat set of fields entered for one traffic stop.
type Record struct {
	VehicleNumber    string `json:"vehicle_number" validate:"required,max=20"`
	DriverGender     string `json:"driver_gender" validate:"required,oneof=M F"`
	DriverAge        int    `json:"driver_age" validate:"min=0,max=120"`
	DriverRace       string `json:"driver_race" validate:"max=50"`
	SearchType       string `json:"search_type" validate:"max=100"`
	StopDate         string `json:"stop_date" validate:"required,datetime=2006-01-02"`
	StopTime         string `json:"stop_time" validate:"required"`
	StopDuration     string `json:"stop_duration" validate:"max=20"`
	CountryName      string `json:"country_name" validate:"max=50"`
	DrugsRelatedStop bool   `json:"drugs_related_stop"`
	SearchConducted  bool   `json:"search_conducted"`
	IsArrested       bool   `json:"is_arrested"`
	StopOutcome      string `json:"stop_outcome" validate:"max=50"`
	ViolationRaw     string `json:"violation_raw" validate:"max=100"`
	Violation        string `json:"violation" validate:"max=50"`
	AddedBy          string `json:"added_by,omitempty"`
}

// Rows converts r into the three table rows, deriving age_group from the age.
func (r Record) Rows() (*Driver, *Stop, *Violation, error) {
	date, err := time.Parse(DateLayout, r.StopDate)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stop_date %q: %w", r.StopDate, ErrInvalidInput)
	}
	clock, err := ParseClock(r.StopTime)
	if err != nil {
		return nil, nil, nil, err
	}

	driver := &Driver{
		VehicleNumber: r.VehicleNumber,
		Gender:        r.DriverGender,
		Age:           r.DriverAge,
		AgeGroup:      AgeGroupFor(r.DriverAge),
		Race:          r.DriverRace,
	}

	s := &Stop{
		VehicleNumber:    r.VehicleNumber,
		SearchType:       r.SearchType,
		StopDate:         date,
		StopTime:         clock,
		StopDuration:     r.StopDuration,
		CountryName:      r.CountryName,
		DrugsRelatedStop: r.DrugsRelatedStop,
		SearchConducted:  r.SearchConducted,
		IsArrested:       r.IsArrested,
		StopOutcome:      r.StopOutcome,
	}
	if r.AddedBy != "" {
		addedBy := r.AddedBy
		s.AddedBy = &addedBy
	}

	v := &Violation{
		VehicleNumber: r.VehicleNumber,
		ViolationRaw:  r.ViolationRaw,
		Violation:     r.Violation,
	}
	return driver, s, v, nil
}

var clockLayouts = []string{TimeLayout, "15:04", "3:04 PM", "3:04:05 PM"}

// ParseClock normalizes a time of day to HH:MM:SS.
func ParseClock(s string) (string, error) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", fmt.Errorf("stop_time %q: %w", s, ErrInvalidInput)
}
