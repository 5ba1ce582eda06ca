// Package entry runs the new-entry workflow: predict the outcome, store the
// record when the session may write, and announce it.
package entry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"securecheck/internal/metrics"
	"securecheck/internal/predict"
	"securecheck/internal/session"
	"securecheck/internal/stop"

	"github.com/google/uuid"
)

const EventRecordCreated = "record.created"

const (
	NoticeSaved         = "Data inserted successfully."
	NoticeViewer        = "As a viewer, your data was not saved. Prediction only."
	NoticeLoginRequired = "Officer login required, your data was not saved. Prediction only."
)

// Producer publishes events; the NATS and Kafka producers satisfy it.
type Producer interface {
	SendMessage(ctx context.Context, key string, value interface{}) error
}

// Submission is one entry form: the selected role plus the record fields.
type Submission struct {
	Role session.Role `json:"role" validate:"required,oneof=viewer officer"`
	stop.Record
}

type Outcome struct {
	Prediction    predict.Prediction `json:"prediction"`
	Saved         bool               `json:"saved"`
	Notice        string             `json:"notice"`
	VehicleNumber string             `json:"vehicle_number,omitempty"`
}

// RecordCreated is published after a record is stored.
type RecordCreated struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	VehicleNumber string    `json:"vehicle_number"`
	AddedBy       string    `json:"added_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Service struct {
	records   stop.Service
	estimator *predict.Estimator
	producer  Producer
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService wires the workflow. producer may be nil, in which case no
// events are published.
func NewService(records stop.Service, estimator *predict.Estimator, producer Producer, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		records:   records,
		estimator: estimator,
		producer:  producer,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Submit always returns the prediction. The record is written only when sess
// may write for sub.Role; a failed write is returned as the error alongside
// the prediction.
func (s *Service) Submit(ctx context.Context, sess *session.Session, sub Submission) (*Outcome, error) {
	rec := sub.Record

	prediction := s.estimator.Predict(ctx, predict.Input{
		DriverAge:        rec.DriverAge,
		DriverGender:     rec.DriverGender,
		CountryName:      rec.CountryName,
		StopDate:         rec.StopDate,
		StopTime:         rec.StopTime,
		ViolationRaw:     rec.ViolationRaw,
		SearchConducted:  rec.SearchConducted,
		DrugsRelatedStop: rec.DrugsRelatedStop,
	})

	out := &Outcome{Prediction: prediction}

	if !sess.CanWrite(sub.Role) {
		out.Notice = NoticeViewer
		if sub.Role == session.RoleOfficer {
			out.Notice = NoticeLoginRequired
		}
		s.metrics.RecordEntry(ctx, false)
		s.logger.InfoContext(ctx, "entry not saved", "role", sub.Role, "session", sess.State().String())
		return out, nil
	}

	if rec.StopOutcome == "" {
		rec.StopOutcome = prediction.Outcome
	}
	if rec.Violation == "" {
		rec.Violation = prediction.Violation
	}
	rec.AddedBy = sess.OfficerID()

	if err := s.records.CreateRecord(ctx, &rec); err != nil {
		s.metrics.RecordEntry(ctx, false)
		return out, fmt.Errorf("save entry: %w", err)
	}

	out.Saved = true
	out.Notice = NoticeSaved
	out.VehicleNumber = rec.VehicleNumber
	s.metrics.RecordEntry(ctx, true)

	s.publish(ctx, rec)
	return out, nil
}

// publish announces a stored record. Failures are logged only; the record is
// already committed.
func (s *Service) publish(ctx context.Context, rec stop.Record) {
	if s.producer == nil {
		return
	}

	event := RecordCreated{
		EventID:       uuid.NewString(),
		Type:          EventRecordCreated,
		VehicleNumber: rec.VehicleNumber,
		AddedBy:       rec.AddedBy,
		OccurredAt:    s.now().UTC(),
	}
	if err := s.producer.SendMessage(ctx, rec.VehicleNumber, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish record event",
			"vehicle_number", rec.VehicleNumber,
			"error", err,
		)
	}
}
