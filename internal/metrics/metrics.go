package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for confirm attempts
const (
	OutcomeSuccess    = "success"
	OutcomeRejected   = "rejected"
	OutcomeUnexpected = "unexpected"
	OutcomeInFlight   = "in_flight"
)

// BookingMetrics exposes counters/histograms for the booking form
type BookingMetrics struct {
	sessions      prometheus.Gauge
	submits       *prometheus.CounterVec
	confirms      *prometheus.CounterVec
	insertLatency prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roombooking",
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Booking sessions currently held in memory",
		}),
		submits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roombooking",
			Subsystem: "form",
			Name:      "submit_total",
			Help:      "Submit attempts by validation result",
		}, []string{"result"}),
		confirms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roombooking",
			Subsystem: "form",
			Name:      "confirm_total",
			Help:      "Confirm attempts by outcome",
		}, []string{"outcome"}),
		insertLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "roombooking",
			Subsystem: "store",
			Name:      "insert_latency_seconds",
			Help:      "Latency of remote booking inserts",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessions, m.submits, m.confirms, m.insertLatency)
	return m
}

func (m *BookingMetrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

// ObserveSubmit records whether a submit passed validation
func (m *BookingMetrics) ObserveSubmit(valid bool) {
	if m == nil {
		return
	}
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.submits.WithLabelValues(result).Inc()
}

// ObserveConfirm counts a confirm attempt. Latency is recorded only for
// inserts that ran, so a zero duration adds no sample.
func (m *BookingMetrics) ObserveConfirm(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.confirms.WithLabelValues(outcome).Inc()
	if outcome != OutcomeInFlight && took > 0 {
		m.insertLatency.Observe(took.Seconds())
	}
}
