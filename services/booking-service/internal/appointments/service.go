package appointments

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cruiserex/site/services/booking-service/internal/metrics"
	"github.com/cruiserex/site/services/booking-service/internal/model"
	"github.com/cruiserex/site/services/booking-service/internal/storage"
)

// Store persists appointments. Implementations return storage.ErrNotFound for
// a missing id.
type Store interface {
	Insert(ctx context.Context, appt model.Appointment) (model.Appointment, error)
	List(ctx context.Context) ([]model.Appointment, error)
	Update(ctx context.Context, id int64, changes model.Changes) (model.Appointment, error)
	Delete(ctx context.Context, id int64) error
}

// Notifier announces a newly booked appointment.
type Notifier interface {
	Notify(ctx context.Context, appt model.Appointment) error
}

type Service struct {
	store    Store
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService wires a Service. notifier and m may be nil.
func NewService(store Store, notifier Notifier, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, notifier: notifier, metrics: m, logger: logger}
}

func (s *Service) Create(ctx context.Context, p Payload) (model.Appointment, error) {
	ctx, span := startSpan(ctx, "appointments.create")
	defer span.End()

	appt, err := newAppointment(p)
	if err != nil {
		return model.Appointment{}, err
	}
	created, err := s.store.Insert(ctx, appt)
	if err != nil {
		span.RecordError(err)
		return model.Appointment{}, s.storageErr("create appointment", err)
	}
	span.SetAttributes(attribute.Int64("appointment.id", created.ID))
	s.metrics.Created(string(created.Status))
	s.logger.Info("appointment created", "id", created.ID, "date", created.Date, "time", created.Time)
	return created, nil
}

// Book creates the appointment and then notifies. A notification failure is
// returned as *NotificationError together with the saved appointment.
func (s *Service) Book(ctx context.Context, p Payload) (model.Appointment, error) {
	created, err := s.Create(ctx, p)
	if err != nil {
		return model.Appointment{}, err
	}
	if s.notifier == nil {
		return created, nil
	}

	ctx, span := startSpan(ctx, "appointments.notify")
	defer span.End()
	err = s.notifier.Notify(ctx, created)
	s.metrics.Notification(err)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("appointment notification failed", "id", created.ID, "err", err)
		return created, &NotificationError{Err: err}
	}
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]model.Appointment, error) {
	ctx, span := startSpan(ctx, "appointments.list")
	defer span.End()

	list, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, s.storageErr("fetch appointments", err)
	}
	if list == nil {
		list = []model.Appointment{}
	}
	return list, nil
}

// Update applies the payload to the appointment named by rawID. An "id" key in
// the payload is ignored.
func (s *Service) Update(ctx context.Context, rawID string, p Payload) (model.Appointment, error) {
	ctx, span := startSpan(ctx, "appointments.update")
	defer span.End()

	id, err := parseID(rawID)
	if err != nil {
		return model.Appointment{}, err
	}
	changes, err := changesFrom(p)
	if err != nil {
		return model.Appointment{}, err
	}
	updated, err := s.store.Update(ctx, id, changes)
	if err != nil {
		if storage.IsNotFound(err) {
			return model.Appointment{}, notFound(rawID)
		}
		span.RecordError(err)
		return model.Appointment{}, s.storageErr("update appointment", err)
	}
	s.metrics.Updated(string(updated.Status))
	s.logger.Info("appointment updated", "id", updated.ID, "status", updated.Status)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	ctx, span := startSpan(ctx, "appointments.delete")
	defer span.End()

	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			return notFound(rawID)
		}
		span.RecordError(err)
		return s.storageErr("delete appointment", err)
	}
	s.metrics.Deleted()
	s.logger.Info("appointment deleted", "id", id)
	return nil
}

func (s *Service) storageErr(op string, err error) error {
	s.logger.Error("appointment store failed", "op", op, "err", err)
	return &StorageError{Op: op, Err: err}
}

func notFound(rawID string) error {
	return fmt.Errorf("%w: id %s", ErrNotFound, rawID)
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer("appointments").Start(ctx, name)
}
