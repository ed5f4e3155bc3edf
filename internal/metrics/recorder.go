package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultRejected ResultLabel = "rejected" // validation refused the operation
	ResultFailed   ResultLabel = "failed"
	ResultBusy     ResultLabel = "busy" // a dispatch was already in flight
)

// Recorder defines observability hooks. Implementations may forward to
// Prometheus or elsewhere.
type Recorder interface {
	IncMutation(op string, result ResultLabel)
	IncDispatchOutcome(path string, result ResultLabel)
	ObserveDispatchDuration(path string, d time.Duration)
	IncDispatchStepFailure(step string)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncMutation(string, ResultLabel)              {}
func (NoopRecorder) IncDispatchOutcome(string, ResultLabel)       {}
func (NoopRecorder) ObserveDispatchDuration(string, time.Duration) {}
func (NoopRecorder) IncDispatchStepFailure(string)                {}
