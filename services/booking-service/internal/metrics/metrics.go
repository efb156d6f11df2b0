package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the appointment counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	created       *prometheus.CounterVec
	updated       *prometheus.CounterVec
	deleted       prometheus.Counter
	notifications *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "appointments_created_total",
			Help:      "Appointments created, by status at creation.",
		}, []string{"status"}),
		updated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "appointments_updated_total",
			Help:      "Appointment updates, by resulting status.",
		}, []string{"status"}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "appointments_deleted_total",
			Help:      "Appointments deleted.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "notifications_total",
			Help:      "Notification emails attempted, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.created,
		m.updated,
		m.deleted,
		m.notifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Created(status string) {
	if m == nil {
		return
	}
	m.created.WithLabelValues(status).Inc()
}

func (m *Metrics) Updated(status string) {
	if m == nil {
		return
	}
	m.updated.WithLabelValues(status).Inc()
}

func (m *Metrics) Deleted() {
	if m == nil {
		return
	}
	m.deleted.Inc()
}

func (m *Metrics) Notification(err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.notifications.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
