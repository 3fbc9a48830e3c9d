package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "railway",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "railway",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "railway",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "railway",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Bookings created, by resulting status.",
		},
		[]string{"status"},
	)

	cancellations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "railway",
			Subsystem: "bookings",
			Name:      "cancelled_total",
			Help:      "Bookings cancelled by passengers or admins.",
		},
	)

	seatsBooked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "railway",
			Subsystem: "bookings",
			Name:      "seats_total",
			Help:      "Seats taken by confirmed bookings, by class.",
		},
		[]string{"class"},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "railway",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		bookings,
		cancellations,
		seatsBooked,
		logins,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func HTTPStarted()  { httpInFlight.Inc() }
func HTTPFinished() { httpInFlight.Dec() }

func ObserveHTTP(method, path, status string, seconds float64) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(seconds)
}

func RecordBooking(status, class string, seats int) {
	bookings.WithLabelValues(status).Inc()
	if status == "confirmed" {
		seatsBooked.WithLabelValues(class).Add(float64(seats))
	}
}

func RecordCancellation() { cancellations.Inc() }

func RecordLogin(success bool) {
	if success {
		logins.WithLabelValues("success").Inc()
		return
	}
	logins.WithLabelValues("failure").Inc()
}
