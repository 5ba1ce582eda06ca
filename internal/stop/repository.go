package stop

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"securecheck/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	// CreateRecord inserts driver, stop and violation in one transaction.
	CreateRecord(ctx context.Context, d *Driver, s *Stop, v *Violation) error
	GetRecord(ctx context.Context, vehicleNumber string) (*StoredRecord, error)
	ListStops(ctx context.Context, limit, offset int) ([]Stop, error)
	DeleteDriver(ctx context.Context, vehicleNumber string) error
	DeleteStop(ctx context.Context, vehicleNumber string) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) CreateRecord(ctx context.Context, d *Driver, s *Stop, v *Violation) error {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(d).Returning("NULL").Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(s).Returning("NULL").Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(v).Returning("NULL").Exec(ctx)
		return err
	})

	r.metrics.Database.RecordQuery(ctx, "insert", "records", time.Since(start), err)

	return err
}

func (r *repository) GetRecord(ctx context.Context, vehicleNumber string) (*StoredRecord, error) {
	start := time.Now()
	rec := new(StoredRecord)

	err := r.db.NewSelect().Model(&rec.Driver).Where("vehicle_number = ?", vehicleNumber).Scan(ctx)
	if err == nil {
		err = r.db.NewSelect().Model(&rec.Stop).Where("vehicle_number = ?", vehicleNumber).Scan(ctx)
	}

	r.metrics.Database.RecordQuery(ctx, "select", "records", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	v := new(Violation)
	err = r.db.NewSelect().Model(v).Where("vehicle_number = ?", vehicleNumber).Scan(ctx)
	switch {
	case err == nil:
		rec.Violation = v
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}
	return rec, nil
}

func (r *repository) ListStops(ctx context.Context, limit, offset int) ([]Stop, error) {
	start := time.Now()
	var stops []Stop
	err := r.db.NewSelect().
		Model(&stops).
		Order("stop_date DESC", "stop_time DESC", "vehicle_number").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "stops", time.Since(start), err)

	return stops, err
}

// DeleteDriver removes the driver; the stop and violation go with it by cascade.
func (r *repository) DeleteDriver(ctx context.Context, vehicleNumber string) error {
	return r.delete(ctx, &Driver{VehicleNumber: vehicleNumber}, "drivers")
}

// DeleteStop removes the stop and, by cascade, its violation. The driver stays.
func (r *repository) DeleteStop(ctx context.Context, vehicleNumber string) error {
	return r.delete(ctx, &Stop{VehicleNumber: vehicleNumber}, "stops")
}

func (r *repository) delete(ctx context.Context, model interface{}, table string) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(model).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", table, time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
