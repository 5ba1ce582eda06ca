package stop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"securecheck/internal/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrRecordNotFound      = errors.New("record not found")
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

type Service interface {
	CreateRecord(ctx context.Context, rec *Record) error
	GetRecord(ctx context.Context, vehicleNumber string) (*StoredRecord, error)
	ListStops(ctx context.Context, limit, offset int) ([]Stop, error)
	DeleteDriver(ctx context.Context, vehicleNumber string) error
	DeleteStop(ctx context.Context, vehicleNumber string) error
}

type service struct {
	repo     Repository
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(repo Repository, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

// CreateRecord validates rec and stores it atomically: either all three rows
// are written or none are.
func (s *service) CreateRecord(ctx context.Context, rec *Record) error {
	if rec == nil {
		return ErrInvalidInput
	}
	if err := s.validate.Struct(rec); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	d, st, v, err := rec.Rows()
	if err != nil {
		return err
	}

	if err := s.repo.CreateRecord(ctx, d, st, v); err != nil {
		if IsConstraintViolation(err) {
			s.metrics.RecordRecordRejected(ctx)
			s.logger.WarnContext(ctx, "record rejected by constraint",
				"vehicle_number", rec.VehicleNumber,
				"error", err,
			)
			return fmt.Errorf("%w: %s", ErrConstraintViolation, err.Error())
		}
		s.logger.ErrorContext(ctx, "failed to store record",
			"vehicle_number", rec.VehicleNumber,
			"error", err,
		)
		return fmt.Errorf("store record %s: %w", rec.VehicleNumber, err)
	}

	s.metrics.RecordRecordCreated(ctx)
	s.logger.InfoContext(ctx, "record stored",
		"vehicle_number", rec.VehicleNumber,
		"age_group", d.AgeGroup,
	)
	return nil
}

func (s *service) GetRecord(ctx context.Context, vehicleNumber string) (*StoredRecord, error) {
	if vehicleNumber == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetRecord(ctx, vehicleNumber)
}

func (s *service) ListStops(ctx context.Context, limit, offset int) ([]Stop, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.ListStops(ctx, limit, offset)
}

func (s *service) DeleteDriver(ctx context.Context, vehicleNumber string) error {
	if vehicleNumber == "" {
		return ErrInvalidInput
	}
	return s.repo.DeleteDriver(ctx, vehicleNumber)
}

func (s *service) DeleteStop(ctx context.Context, vehicleNumber string) error {
	if vehicleNumber == "" {
		return ErrInvalidInput
	}
	return s.repo.DeleteStop(ctx, vehicleNumber)
}

// IsConstraintViolation reports whether err is a Postgres integrity
// violation: duplicate key, foreign key, not-null or check.
func IsConstraintViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}
