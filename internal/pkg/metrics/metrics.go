package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the pipeline counters. A fresh registry per instance keeps
// tests independent of global collector state.
type Metrics struct {
	Registry *prometheus.Registry

	QueueProcessed prometheus.Counter
	EmailsSent     prometheus.Counter
	EmailsSkipped  prometheus.Counter
	EmailsRetried  prometheus.Counter
	EmailsFailed   prometheus.Counter
	AlertsEmitted  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		QueueProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "email_queue_processed_total",
			Help: "Queue entries claimed and handled by the worker.",
		}),
		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Emails handed to the transport successfully.",
		}),
		EmailsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emails_skipped_total",
			Help: "Entries marked sent without a transport call (preference off).",
		}),
		EmailsRetried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emails_retried_total",
			Help: "Entries rescheduled after a transport failure.",
		}),
		EmailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emails_failed_total",
			Help: "Entries dead-lettered after exhausting attempts or failing permanently.",
		}),
		AlertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_emitted_total",
			Help: "Notifications emitted by the daily alert scans.",
		}, []string{"scan"}),
	}

	m.Registry.MustRegister(
		m.QueueProcessed,
		m.EmailsSent,
		m.EmailsSkipped,
		m.EmailsRetried,
		m.EmailsFailed,
		m.AlertsEmitted,
	)

	return m
}
