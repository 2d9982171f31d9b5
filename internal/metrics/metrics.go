// Package metrics records run-level measurements of a staging load behind a
// pluggable Backend. The default backend discards everything, so callers may
// record unconditionally.
//
// Concrete backends live in subpackages (prompush, datadog) and are installed
// once at startup with SetBackend.
package metrics

import (
	"sync"
	"time"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Metric names emitted by this package.
const (
	StepTotal    = "stageload_step_total"
	StepDuration = "stageload_step_duration_seconds"
	RowsTotal    = "stageload_rows_total"
)

// Backend receives counter and duration observations.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b. Passing nil restores the no-op backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nopBackend{}
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the installed backend.
func Flush() error { return current().Flush() }

// RecordStep counts one execution of a pipeline step and its duration,
// labeled with the outcome.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows adds n rows for relation at stage ("read", "written" or
// "validated"). Non-positive n is ignored.
func RecordRows(job, relation, stage string, n int64) {
	if n <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(n), Labels{
		"job":      job,
		"relation": relation,
		"stage":    stage,
	})
}
