package harness

import (
	"github.com/roach88/valuer/internal/store"
	"github.com/roach88/valuer/internal/valuation"
)

// Outcome values recorded for steps.
const (
	OutcomeOK           = "ok"
	OutcomeRejected     = "rejected"
	OutcomeNotFound     = "not_found"
	OutcomeUnknownField = "unknown_field"
	OutcomeComposition  = "composition"
	OutcomeBusy         = "busy"
	OutcomeError        = "error"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int64             `json:"seq"`
	Op      string            `json:"op"`
	Args    map[string]string `json:"args,omitempty"`
	Outcome string            `json:"outcome"`
	Result  map[string]string `json:"result,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step met its expectation and every assertion held.
	Pass bool `json:"pass"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`

	// Final state, for assertions.
	Draft      valuation.Request `json:"draft"`
	Deliveries []store.Delivery  `json:"deliveries"`
	Published  []string          `json:"published"` // blob keys
	Opened     []string          `json:"opened"`    // compose URLs handed to the opener
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Count returns how many trace events have op and, when outcome is set,
// that outcome.
func (r *Result) Count(op, outcome string) int {
	n := 0
	for _, ev := range r.Trace {
		if ev.Op == op && (outcome == "" || ev.Outcome == outcome) {
			n++
		}
	}
	return n
}
