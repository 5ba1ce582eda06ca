package db

import (
	"context"

	"securecheck/internal/officer"
	"securecheck/internal/stop"

	"github.com/uptrace/bun"
)

// Schema lists the SecureCheck tables parents first.
func Schema() []Table {
	return []Table{
		{
			Name:  "officers",
			Model: (*officer.Officer)(nil),
			Checks: map[string]string{
				"officers_role_check": "role IN ('admin', 'data_entry')",
			},
		},
		{
			Name:  "drivers",
			Model: (*stop.Driver)(nil),
			Checks: map[string]string{
				"drivers_gender_check": "driver_gender IN ('M', 'F')",
				"drivers_age_check":    "driver_age BETWEEN 0 AND 120",
			},
		},
		{
			Name:  "stops",
			Model: (*stop.Stop)(nil),
			ForeignKeys: []string{
				`("vehicle_number") REFERENCES "drivers" ("vehicle_number") ON DELETE CASCADE`,
				`("added_by") REFERENCES "officers" ("officer_id") ON DELETE SET NULL`,
			},
		},
		{
			Name:  "violations",
			Model: (*stop.Violation)(nil),
			ForeignKeys: []string{
				`("vehicle_number") REFERENCES "stops" ("vehicle_number") ON DELETE CASCADE`,
			},
		},
	}
}

// Migrate creates the full schema.
func Migrate(ctx context.Context, db bun.IDB) error {
	return CreateSchema(ctx, db, Schema()...)
}

// TableNames returns the schema's tables children first, the order a
// TRUNCATE or DROP needs.
func TableNames() []string {
	tables := Schema()
	names := make([]string, len(tables))
	for i, t := range tables {
		names[len(tables)-1-i] = t.Name
	}
	return names
}
