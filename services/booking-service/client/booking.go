package client

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrPastAppointment = errors.New("the appointment date and time must not be in the past")
	ErrPhoneDigits     = errors.New("the phone number may only contain digits")
)

// Booking is what the public form submits.
type Booking struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	RequesterName   string `json:"requester_name"`
	CompanyName     string `json:"company_name"`
	CompanyLocation string `json:"company_location"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Reason          string `json:"reason"`
}

// Validate applies the form's local checks: every field filled in, a start no
// earlier than now (local time) and a digits-only phone.
func (b Booking) Validate(now time.Time) error {
	fields := []struct{ name, value string }{
		{"date", b.Date},
		{"time", b.Time},
		{"requester_name", b.RequesterName},
		{"company_name", b.CompanyName},
		{"company_location", b.CompanyLocation},
		{"phone", b.Phone},
		{"email", b.Email},
		{"reason", b.Reason},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("field %q is required", f.name)
		}
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", b.Date+" "+FormatTime(b.Time), now.Location())
	if err != nil {
		return ErrPastAppointment
	}
	if start.Before(now.Truncate(time.Minute)) {
		return ErrPastAppointment
	}
	for _, r := range b.Phone {
		if r < '0' || r > '9' {
			return ErrPhoneDigits
		}
	}
	return nil
}

// DigitsOnly strips everything but ASCII digits, as the form does while typing.
func DigitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// FormatDate turns YYYY-MM-DD into DD/MM/YYYY. Anything else is returned as is.
func FormatDate(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return date
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// FormatTime keeps HH:MM of an HH:MM or HH:MM:SS value.
func FormatTime(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}
