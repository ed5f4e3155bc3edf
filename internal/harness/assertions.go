package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/valuer/internal/valuation"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %v -> %s\n", ev.Seq, ev.Op, ev.Args, ev.Outcome)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(r *Result, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: r.Trace}
	}

	switch a.Type {
	case AssertTotals:
		totals, err := valuation.ComputeTotals(r.Draft.Items)
		if err != nil {
			return fail(fmt.Sprintf("totals %v", a.Expect), err.Error())
		}
		got := map[string]string{
			"netto": valuation.FormatAmount(totals.Netto),
			"vat":   valuation.FormatAmount(totals.VAT),
			"total": valuation.FormatAmount(totals.Total),
		}
		for k, want := range a.Expect {
			if got[k] != want {
				return fail(fmt.Sprintf("%s = %s", k, want), fmt.Sprintf("%s = %s", k, got[k]))
			}
		}

	case AssertItemCount:
		if n := len(r.Draft.Items); n != a.Count {
			return fail(fmt.Sprintf("%d items", a.Count), fmt.Sprintf("%d items", n))
		}

	case AssertRecipient:
		if r.Draft.RecipientName != a.Value {
			return fail(fmt.Sprintf("recipient %q", a.Value), fmt.Sprintf("recipient %q", r.Draft.RecipientName))
		}

	case AssertDeliveries:
		n := 0
		for _, d := range r.Deliveries {
			if a.Mode == "" || d.Mode == a.Mode {
				n++
			}
		}
		if n != a.Count {
			return fail(fmt.Sprintf("%d %s deliveries", a.Count, a.Mode), fmt.Sprintf("%d", n))
		}

	case AssertPublished:
		if n := len(r.Published); n != a.Count {
			return fail(fmt.Sprintf("%d published documents", a.Count), fmt.Sprintf("%d %v", n, r.Published))
		}

	case AssertOpened:
		if n := len(r.Opened); n != a.Count {
			return fail(fmt.Sprintf("%d compose windows opened", a.Count), fmt.Sprintf("%d", n))
		}

	case AssertTraceCount:
		if n := r.Count(a.Op, a.Outcome); n != a.Count {
			return fail(fmt.Sprintf("%s %s x%d", a.Op, a.Outcome, a.Count), fmt.Sprintf("x%d", n))
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
