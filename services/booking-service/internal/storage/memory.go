package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/cruiserex/site/services/booking-service/internal/model"
)

// Memory keeps appointments in process. It backs tests and STORE_DRIVER=memory.
type Memory struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Appointment
}

func NewMemory() *Memory {
	return &Memory{nextID: 1, rows: map[int64]model.Appointment{}}
}

func (m *Memory) Insert(_ context.Context, appt model.Appointment) (model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	appt.ID = m.nextID
	m.nextID++
	m.rows[appt.ID] = appt
	return appt, nil
}

func (m *Memory) List(_ context.Context) ([]model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Appointment, 0, len(m.rows))
	for _, appt := range m.rows {
		out = append(out, appt)
	}
	sort.Slice(out, func(i, j int) bool { return model.Less(out[i], out[j]) })
	return out, nil
}

func (m *Memory) Update(_ context.Context, id int64, changes model.Changes) (model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	appt, ok := m.rows[id]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}
	appt = appt.Apply(changes)
	m.rows[id] = appt
	return appt, nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}
