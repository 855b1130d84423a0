package activity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors fed by domain events.
type Metrics struct {
	events          *prometheus.CounterVec
	tasksByPriority *prometheus.CounterVec
	updateFields    prometheus.Histogram
}

// NewMetrics registers the collectors with reg. Pass
// prometheus.DefaultRegisterer to expose them on /metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskmanager",
				Name:      "events_total",
				Help:      "Domain events consumed, by event type.",
			},
			[]string{"event"},
		),
		tasksByPriority: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskmanager",
				Name:      "tasks_created_total",
				Help:      "Tasks created, by priority.",
			},
			[]string{"priority"},
		),
		updateFields: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "taskmanager",
				Name:      "task_update_fields",
				Help:      "Number of fields changed per task update.",
				Buckets:   []float64{1, 2, 3, 4, 5, 6, 7},
			},
		),
	}
}

func (m *Metrics) observe(event string) {
	m.events.WithLabelValues(event).Inc()
}
