package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.Created("pending")
	m.Updated("confirmed")
	m.Deleted()
	m.Notification(nil)
	m.Notification(errors.New("smtp down"))

	rw := httptest.NewRecorder()
	m.Handler().ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rw.Body)
	text := string(body)

	for _, want := range []string{
		`booking_appointments_created_total{status="pending"} 1`,
		`booking_appointments_updated_total{status="confirmed"} 1`,
		`booking_appointments_deleted_total 1`,
		`booking_notifications_total{result="failed"} 1`,
		`booking_notifications_total{result="sent"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Created("pending")
	m.Updated("cancelled")
	m.Deleted()
	m.Notification(nil)
}
