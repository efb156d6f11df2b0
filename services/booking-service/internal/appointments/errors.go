package appointments

import (
	"errors"
	"fmt"
)

// ValidationError reports caller input that violates a field rule. Field is the
// offending column ("id" for a missing identifier).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf("field %q is required", field)}
}

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf("field %q %s", field, reason)}
}

// ErrNotFound is wrapped when the identifier matches no appointment.
var ErrNotFound = errors.New("appointment not found")

// StorageError hides the backend cause behind an operation level message.
// The cause stays reachable through Unwrap for logging.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "could not " + e.Op
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotificationError means the appointment was saved but the email was not sent.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return "appointment saved but the notification email could not be sent"
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsNotification(err error) bool {
	var ne *NotificationError
	return errors.As(err, &ne)
}
