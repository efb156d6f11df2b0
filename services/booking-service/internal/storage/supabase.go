package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cruiserex/site/services/booking-service/internal/model"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

const supabaseTable = "appointments"

// restClient is satisfied by both *supabase.Client and *postgrest.Client.
type restClient interface {
	From(table string) *postgrest.QueryBuilder
}

// Supabase talks to a hosted Supabase project through its PostgREST API using the
// service role key. The outbox is not available here; events are only emitted by Postgres.
// postgrest-go v0.0.11 has no context-aware Execute, so a request already in
// flight runs to completion; ctx is only checked before it is sent.
type Supabase struct {
	rest restClient
}

func NewSupabase(url, serviceRoleKey string) (*Supabase, error) {
	client, err := supabase.NewClient(url, serviceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	return &Supabase{rest: client}, nil
}

func newSupabaseWithClient(rest restClient) *Supabase {
	return &Supabase{rest: rest}
}

type supabaseRow struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	RequesterName   string `json:"requester_name"`
	CompanyName     string `json:"company_name"`
	CompanyLocation string `json:"company_location"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Reason          string `json:"reason"`
	Status          string `json:"status"`
}

func (s *Supabase) Insert(ctx context.Context, appt model.Appointment) (model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return model.Appointment{}, err
	}
	row := supabaseRow{
		Date:            appt.Date,
		Time:            appt.Time,
		RequesterName:   appt.RequesterName,
		CompanyName:     appt.CompanyName,
		CompanyLocation: appt.CompanyLocation,
		Phone:           appt.Phone,
		Email:           appt.Email,
		Reason:          appt.Reason,
		Status:          string(appt.Status),
	}
	data, _, err := s.rest.From(supabaseTable).
		Insert(row, false, "", "representation", "").
		Execute()
	if err != nil {
		return model.Appointment{}, err
	}
	return single(data)
}

func (s *Supabase) List(ctx context.Context) ([]model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := s.rest.From(supabaseTable).
		Select("*", "", false).
		Order("date", &postgrest.OrderOpts{Ascending: true}).
		Order("time", &postgrest.OrderOpts{Ascending: true}).
		Order("id", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, err
	}
	return decodeRows(data)
}

func (s *Supabase) Update(ctx context.Context, id int64, changes model.Changes) (model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return model.Appointment{}, err
	}
	values := make(map[string]string, len(changes))
	for k, v := range changes {
		values[k] = v
	}
	data, _, err := s.rest.From(supabaseTable).
		Update(values, "representation", "").
		Eq("id", strconv.FormatInt(id, 10)).
		Execute()
	if err != nil {
		return model.Appointment{}, err
	}
	return single(data)
}

func (s *Supabase) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, _, err := s.rest.From(supabaseTable).
		Delete("representation", "").
		Eq("id", strconv.FormatInt(id, 10)).
		Execute()
	if err != nil {
		return err
	}
	_, err = single(data)
	return err
}

func decodeRows(data []byte) ([]model.Appointment, error) {
	appts := []model.Appointment{}
	if err := json.Unmarshal(data, &appts); err != nil {
		return nil, fmt.Errorf("decode supabase response: %w", err)
	}
	return appts, nil
}

// single expects exactly one row; PostgREST answers an empty array when the filter matched nothing.
func single(data []byte) (model.Appointment, error) {
	appts, err := decodeRows(data)
	if err != nil {
		return model.Appointment{}, err
	}
	if len(appts) == 0 {
		return model.Appointment{}, ErrNotFound
	}
	return appts[0], nil
}
