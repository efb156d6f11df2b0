package notify

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/cruiserex/site/services/booking-service/internal/model"
)

const inviteDuration = time.Hour

// Invite renders the appointment as a single VEVENT calendar. Start and end
// are floating times (no TZID, no Z) since appointments carry no zone.
func Invite(appt model.Appointment, brand string, now time.Time) ([]byte, error) {
	start, err := startTime(appt)
	if err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, fmt.Sprintf("-//%s//Appointments//ES", brand))
	cal.Props.SetText(ical.PropMethod, "PUBLISH")

	event := ical.NewComponent(ical.CompEvent)
	event.Props.SetText(ical.PropUID, fmt.Sprintf("appointment-%d@%s", appt.ID, uidDomain(brand)))
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.Set(floating(ical.PropDateTimeStart, start))
	event.Props.Set(floating(ical.PropDateTimeEnd, start.Add(inviteDuration)))
	event.Props.SetText(ical.PropSummary, fmt.Sprintf("Cita con %s (%s)", appt.RequesterName, appt.CompanyName))
	event.Props.SetText(ical.PropLocation, appt.CompanyLocation)
	event.Props.SetText(ical.PropDescription, appt.Reason)
	cal.Children = append(cal.Children, event)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode invite: %w", err)
	}
	return buf.Bytes(), nil
}

func startTime(appt model.Appointment) (time.Time, error) {
	clock := appt.Time
	if len(clock) == len("15:04") {
		clock += ":00"
	}
	t, err := time.Parse("2006-01-02 15:04:05", appt.Date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointment start: %w", err)
	}
	return t, nil
}

// floating builds a DATE-TIME property without a zone. Props.SetDateTime would
// attach a TZID for any non-UTC location.
func floating(name string, t time.Time) *ical.Prop {
	prop := ical.NewProp(name)
	prop.SetValueType(ical.ValueDateTime)
	prop.Value = t.Format("20060102T150405")
	return prop
}

func uidDomain(brand string) string {
	d := strings.ToLower(strings.Join(strings.Fields(brand), "-"))
	if d == "" {
		return "appointments.local"
	}
	return d + ".local"
}
