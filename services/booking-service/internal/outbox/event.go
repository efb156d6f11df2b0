package outbox

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/cruiserex/site/services/booking-service/internal/model"
)

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

const (
	EventAppointmentCreated = "appointment.created.v1"
	EventAppointmentUpdated = "appointment.updated.v1"
	EventAppointmentDeleted = "appointment.deleted.v1"
)

type appointmentPayload struct {
	Appointment model.Appointment `json:"appointment"`
	OccurredAt  string            `json:"occurred_at"`
}

// AppointmentEvent builds the envelope for a lifecycle change of appt.
func AppointmentEvent(eventType string, appt model.Appointment, now time.Time) (Event, error) {
	payload, err := json.Marshal(appointmentPayload{
		Appointment: appt,
		OccurredAt:  now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "appointment",
		AggregateID:   strconv.FormatInt(appt.ID, 10),
		EventType:     eventType,
		Payload:       payload,
	}, nil
}
