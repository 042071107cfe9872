package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Manager struct {
	registry *prometheus.Registry

	// counters
	CounterRequests             *prometheus.CounterVec
	CounterNotificationsSent    *prometheus.CounterVec
	CounterNotificationsDropped prometheus.Counter
	CounterNotificationsFailed  prometheus.Counter

	// histograms
	HistRequestDuration *prometheus.HistogramVec
}

// NewTestManager returns a manager on a fresh registry without runtime collectors.
func NewTestManager() *Manager {
	return newManager("fitcoach", "test_server", prometheus.NewRegistry())
}

// NewManager registers Go and process collectors next to the service metrics.
func NewManager(namespace, subsystem string) *Manager {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newManager(namespace, subsystem, reg)
}

func newManager(namespace, subsystem string, reg *prometheus.Registry) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		registry: reg,
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of handled requests",
		}, []string{"method", "route", "status"}),
		CounterNotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_delivered_total",
			Help:      "Notifications handed to the sink, by type",
		}, []string{"type"}),
		CounterNotificationsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_dropped_total",
			Help:      "Notifications dropped because the queue was full or closed",
		}),
		CounterNotificationsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_failed_total",
			Help:      "Notifications the sink failed to deliver",
		}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Duration of requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route"}),
	}
}

// Handler serves the manager's registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// NotificationDelivered, NotificationDropped and NotificationFailed satisfy
// notify.Recorder.
func (m *Manager) NotificationDelivered(kind string) {
	m.CounterNotificationsSent.WithLabelValues(kind).Inc()
}

func (m *Manager) NotificationDropped() { m.CounterNotificationsDropped.Inc() }

func (m *Manager) NotificationFailed() { m.CounterNotificationsFailed.Inc() }
