package httpform

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts dispatched actions and times render passes.
type Metrics struct {
	actions *prometheus.CounterVec
	renders *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which suits tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "schemaform",
				Name:      "actions_total",
				Help:      "Form actions dispatched, by action type and outcome.",
			},
			[]string{"action", "outcome"},
		),
		renders: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "schemaform",
				Name:      "render_duration_seconds",
				Help:      "Time spent walking and rendering the form.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"renderer"},
		),
	}
	if reg == nil {
		return m, nil
	}
	actions, err := register(reg, m.actions)
	if err != nil {
		return nil, err
	}
	renders, err := register(reg, m.renders)
	if err != nil {
		return nil, err
	}
	m.actions, m.renders = actions, renders
	return m, nil
}

func (m *Metrics) observeAction(action string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.actions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) observeRender(renderer string, started time.Time) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(renderer).Observe(time.Since(started).Seconds())
}

// register adds collector to reg, reusing an identical collector registered
// by an earlier handler.
func register[C prometheus.Collector](reg prometheus.Registerer, collector C) (C, error) {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return collector, err
	}
	return collector, nil
}
