// Package metrics provides Prometheus metrics for the reminder service.
//
// HTTP metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - rate_limiter_buckets_total: Gauge of tracked client buckets
//
// Domain metrics:
//   - medreminder_medicines: Gauge of listed medicines by course state
//   - medreminder_doses_taken: Gauge of doses marked taken today
//   - medreminder_reminders_total: Counter of raised reminders by kind
//   - medreminder_ticks_total: Counter of scheduler ticks by result
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/giygas/medreminder/interfaces"
	"github.com/giygas/medreminder/medicine"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Rate limiter buckets held, one per client with a partly drained bucket",
		},
	)

	Medicines = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "medreminder_medicines",
			Help: "Listed medicines by course state",
		},
		[]string{"state"},
	)

	DosesTaken = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "medreminder_doses_taken",
			Help: "Doses of listed medicines marked taken since the last reset",
		},
	)

	RemindersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medreminder_reminders_total",
			Help: "Reminders raised by kind",
		},
		[]string{"kind"},
	)

	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medreminder_ticks_total",
			Help: "Scheduler ticks by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(Medicines)
	prometheus.MustRegister(DosesTaken)
	prometheus.MustRegister(RemindersTotal)
	prometheus.MustRegister(TicksTotal)
}

// ObserveReminder counts one raised reminder
func ObserveReminder(r medicine.Reminder) {
	RemindersTotal.WithLabelValues(string(r.Kind)).Inc()
}

// ObserveTick counts one scheduler tick
func ObserveTick(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	TicksTotal.WithLabelValues(result).Inc()
}

// Compile-time check to ensure StateListener implements Listener
var _ interfaces.Listener = StateListener{}

// StateListener keeps the medicine gauges in line with the tracker
type StateListener struct{}

// RecordsChanged recomputes the gauges from a full snapshot
func (StateListener) RecordsChanged(records []medicine.Record, now time.Time) {
	counts := map[medicine.State]int{
		medicine.StateActive:     0,
		medicine.StateEndingSoon: 0,
		medicine.StateExpired:    0,
	}
	taken := 0

	for _, r := range records {
		if r.Deleted {
			continue
		}
		counts[medicine.Progress(r, now).State]++
		for _, t := range r.Taken {
			if t {
				taken++
			}
		}
	}

	for state, n := range counts {
		Medicines.WithLabelValues(string(state)).Set(float64(n))
	}
	DosesTaken.Set(float64(taken))
}
