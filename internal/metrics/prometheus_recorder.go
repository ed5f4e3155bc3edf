package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry         *prom.Registry
	mutations        *prom.CounterVec
	dispatchOutcomes *prom.CounterVec
	dispatchDuration *prom.HistogramVec
	stepFailures     *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		mutations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "valuer",
			Name:      "draft_mutations_total",
			Help:      "Draft mutations by operation and result",
		}, []string{"op", "result"}),
		dispatchOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "valuer",
			Name:      "dispatch_outcomes_total",
			Help:      "Document dispatches by delivery path and result",
		}, []string{"path", "result"}),
		dispatchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "valuer",
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of a dispatch from compose to delivery",
			Buckets:   prom.DefBuckets,
		}, []string{"path"}),
		stepFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "valuer",
			Name:      "dispatch_step_failures_total",
			Help:      "Dispatch failures by pipeline step",
		}, []string{"step"}),
	}
	reg.MustRegister(pr.mutations, pr.dispatchOutcomes, pr.dispatchDuration, pr.stepFailures)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

func (p *PrometheusRecorder) IncMutation(op string, result ResultLabel) {
	p.mutations.WithLabelValues(op, string(result)).Inc()
}

func (p *PrometheusRecorder) IncDispatchOutcome(path string, result ResultLabel) {
	p.dispatchOutcomes.WithLabelValues(path, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveDispatchDuration(path string, d time.Duration) {
	p.dispatchDuration.WithLabelValues(path).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDispatchStepFailure(step string) {
	p.stepFailures.WithLabelValues(step).Inc()
}

// WriteTextfile writes all registered metrics in the Prometheus text format.
// The file is written atomically so a textfile collector never reads a partial dump.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
