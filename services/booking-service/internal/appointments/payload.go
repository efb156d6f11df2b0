package appointments

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cruiserex/site/services/booking-service/internal/model"
)

// Payload is a decoded JSON object as received from a client. Decode with
// json.Decoder.UseNumber so numeric phones keep their digits.
type Payload map[string]any

var (
	emailPattern = regexp.MustCompile(`.+@.+\..+`)
	// two digit fields keep stored times sortable as text
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)
)

// ValidEmail only checks for an "@" with a "." somewhere after it.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// scalar renders strings and numbers; ok is false for anything else, including null.
func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	}
	return "", false
}

// text returns the value of field as supplied and whether it is present and
// non-blank. Whitespace only counts for the blank check; values are stored as is.
func (p Payload) text(field string) (string, bool) {
	v, ok := scalar(p[field])
	if !ok {
		return "", false
	}
	return v, strings.TrimSpace(v) != ""
}

// ID returns the raw identifier carried in the payload, if any.
func (p Payload) ID() string {
	v, _ := p.text(model.FieldID)
	return strings.TrimSpace(v)
}

func checkField(field, v string) *ValidationError {
	switch field {
	case model.FieldEmail:
		if !ValidEmail(v) {
			return invalidField(field, "is not a valid email address")
		}
	case model.FieldDate:
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return invalidField(field, "must use the YYYY-MM-DD format")
		}
	case model.FieldTime:
		if !validTime(v) {
			return invalidField(field, "must use the HH:MM or HH:MM:SS format")
		}
	case model.FieldPhone:
		if !digitsOnly(v) {
			return invalidField(field, "must contain digits only")
		}
	case model.FieldStatus:
		if !model.Status(v).Valid() {
			return invalidField(field, "must be one of pending, confirmed, cancelled")
		}
	}
	return nil
}

func validTime(v string) bool {
	if !timePattern.MatchString(v) {
		return false
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

func digitsOnly(v string) bool {
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return v != ""
}

// newAppointment validates a creation payload. Required fields are checked in
// model.RequiredFields order before any format rule, so the first missing field
// is always the one reported.
func newAppointment(p Payload) (model.Appointment, error) {
	values := make(map[string]string, len(model.RequiredFields))
	for _, field := range model.RequiredFields {
		v, ok := p.text(field)
		if !ok {
			return model.Appointment{}, missingField(field)
		}
		values[field] = v
	}

	// email first: it is the rule callers hit most.
	if verr := checkField(model.FieldEmail, values[model.FieldEmail]); verr != nil {
		return model.Appointment{}, verr
	}
	for _, field := range model.RequiredFields {
		if verr := checkField(field, values[field]); verr != nil {
			return model.Appointment{}, verr
		}
	}

	status := model.StatusPending
	if raw, present := p[model.FieldStatus]; present && raw != nil {
		v, ok := p.text(model.FieldStatus)
		if ok {
			if verr := checkField(model.FieldStatus, v); verr != nil {
				return model.Appointment{}, verr
			}
			status = model.Status(v)
		}
	}

	return model.Appointment{
		Date:            values[model.FieldDate],
		Time:            values[model.FieldTime],
		RequesterName:   values[model.FieldRequesterName],
		CompanyName:     values[model.FieldCompanyName],
		CompanyLocation: values[model.FieldCompanyLocation],
		Phone:           values[model.FieldPhone],
		Email:           values[model.FieldEmail],
		Reason:          values[model.FieldReason],
		Status:          status,
	}, nil
}

// changesFrom validates an update payload. The id key is dropped before anything else.
func changesFrom(p Payload) (model.Changes, error) {
	changes := model.Changes{}
	for key := range p {
		if key == model.FieldID {
			continue
		}
		if !mutable(key) {
			return nil, invalidField(key, "cannot be updated")
		}
		v, ok := p.text(key)
		if !ok {
			return nil, invalidField(key, "cannot be blank")
		}
		if verr := checkField(key, v); verr != nil {
			return nil, verr
		}
		changes[key] = v
	}
	if len(changes) == 0 {
		return nil, &ValidationError{Message: "no fields to update"}
	}
	return changes, nil
}

func mutable(field string) bool {
	for _, f := range model.MutableFields {
		if f == field {
			return true
		}
	}
	return false
}

func parseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &ValidationError{Field: model.FieldID, Message: "appointment id is required"}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, notFound(raw)
	}
	return id, nil
}
