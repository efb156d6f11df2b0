package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cruiserex/site/libs/db"
	"github.com/cruiserex/site/services/booking-service/internal/model"
	"github.com/cruiserex/site/services/booking-service/internal/outbox"
	"github.com/jackc/pgx/v5"
)

const appointmentColumns = `id, "date", "time", requester_name, company_name, company_location, phone, email, reason, status`

// Postgres stores appointments with pgx. Every change also writes an outbox
// event in the same transaction when an outbox repository is configured.
type Postgres struct {
	pool   *db.Pool
	outbox *outbox.Repository
	now    func() time.Time
}

func NewPostgres(pool *db.Pool, outboxRepo *outbox.Repository) *Postgres {
	return &Postgres{pool: pool, outbox: outboxRepo, now: time.Now}
}

func (p *Postgres) Insert(ctx context.Context, appt model.Appointment) (model.Appointment, error) {
	return p.inTx(ctx, outbox.EventAppointmentCreated, func(tx pgx.Tx) (model.Appointment, error) {
		return scanAppointment(tx.QueryRow(ctx, `
			INSERT INTO appointments
				("date", "time", requester_name, company_name, company_location, phone, email, reason, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+appointmentColumns,
			appt.Date, appt.Time, appt.RequesterName, appt.CompanyName, appt.CompanyLocation,
			appt.Phone, appt.Email, appt.Reason, string(appt.Status)))
	})
}

func (p *Postgres) List(ctx context.Context) ([]model.Appointment, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY "date" ASC, "time" ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appts := []model.Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func (p *Postgres) Update(ctx context.Context, id int64, changes model.Changes) (model.Appointment, error) {
	set, args, err := buildSet(changes)
	if err != nil {
		return model.Appointment{}, err
	}
	args = append(args, id)
	query := `UPDATE appointments SET ` + set + `, updated_at = now() WHERE id = $` + fmt.Sprint(len(args)) +
		` RETURNING ` + appointmentColumns

	return p.inTx(ctx, outbox.EventAppointmentUpdated, func(tx pgx.Tx) (model.Appointment, error) {
		return scanAppointment(tx.QueryRow(ctx, query, args...))
	})
}

func (p *Postgres) Delete(ctx context.Context, id int64) error {
	_, err := p.inTx(ctx, outbox.EventAppointmentDeleted, func(tx pgx.Tx) (model.Appointment, error) {
		return scanAppointment(tx.QueryRow(ctx, `
			DELETE FROM appointments
			WHERE id = $1
			RETURNING `+appointmentColumns, id))
	})
	return err
}

// inTx runs fn and records eventType for the returned row before committing.
func (p *Postgres) inTx(ctx context.Context, eventType string, fn func(pgx.Tx) (model.Appointment, error)) (model.Appointment, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := fn(tx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Appointment{}, ErrNotFound
		}
		return model.Appointment{}, err
	}

	if p.outbox != nil {
		evt, err := outbox.AppointmentEvent(eventType, appt, p.now())
		if err != nil {
			return model.Appointment{}, err
		}
		if err := p.outbox.Insert(ctx, tx, evt); err != nil {
			return model.Appointment{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

// buildSet renders "col = $n" pairs in MutableFields order so queries are stable.
func buildSet(changes model.Changes) (string, []any, error) {
	var parts []string
	var args []any
	for _, field := range model.MutableFields {
		v, ok := changes[field]
		if !ok {
			continue
		}
		args = append(args, v)
		parts = append(parts, fmt.Sprintf("%q = $%d", field, len(args)))
	}
	if len(parts) != len(changes) {
		return "", nil, fmt.Errorf("unsupported column in update set")
	}
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("empty update set")
	}
	return strings.Join(parts, ", "), args, nil
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	var status string
	err := row.Scan(
		&appt.ID,
		&appt.Date,
		&appt.Time,
		&appt.RequesterName,
		&appt.CompanyName,
		&appt.CompanyLocation,
		&appt.Phone,
		&appt.Email,
		&appt.Reason,
		&status,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.Status = model.Status(status)
	return appt, nil
}
