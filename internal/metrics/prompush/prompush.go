// Package prompush pushes stageload metrics to a Prometheus Pushgateway.
// A batch job has no scrape endpoint, so the registry is pushed once when
// the run ends.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"stageload/internal/metrics"
)

// Backend implements metrics.Backend on a private registry.
type Backend struct {
	gatewayURL string
	jobName    string // Pushgateway grouping key
	reg        *prometheus.Registry

	steps    *prometheus.CounterVec   // step, status
	duration *prometheus.HistogramVec // step, status
	rows     *prometheus.CounterVec   // relation, stage
}

// NewBackend builds a backend that pushes to gatewayURL under jobName.
// An empty jobName defaults to "stageload".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "stageload"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Pipeline step executions by step and outcome.",
		}, []string{"step", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metrics.StepDuration,
			Help:    "Pipeline step duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"step", "status"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Rows read, written and validated per staging relation.",
		}, []string{"relation", "stage"}),
	}
	for _, c := range []prometheus.Collector{b.steps, b.duration, b.rows} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.steps != nil {
			b.steps.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case metrics.RowsTotal:
		if b.rows != nil {
			b.rows.WithLabelValues(labels["relation"], labels["stage"]).Add(delta)
		}
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.duration == nil {
		return
	}
	b.duration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry, replacing the previous push for this job.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
