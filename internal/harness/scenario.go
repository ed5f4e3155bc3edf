package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/valuer/internal/valuation"
)

// Scenario is a scripted operator session with expectations.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Currency overrides the document currency. Defaults to NOK.
	Currency string `yaml:"currency,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operator action.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	Item  string `yaml:"item,omitempty"`
	Field string `yaml:"field,omitempty"`
	Value string `yaml:"value,omitempty"`

	// Mode is "local" or "remote" (dispatch only).
	Mode string `yaml:"mode,omitempty"`
	// Fail injects a failure into one dispatch collaborator: upload, link, open or save.
	Fail string `yaml:"fail,omitempty"`

	// Expect is the expected outcome; empty means "ok".
	Expect string `yaml:"expect,omitempty"`
}

// Step operations.
const (
	OpSetRecipient = "set_recipient"
	OpSetEmail     = "set_email"
	OpAddItem      = "add_item"
	OpUpdateItem   = "update_item"
	OpRemoveItem   = "remove_item"
	OpReset        = "reset"
	OpDispatch     = "dispatch"
)

var knownOps = []string{OpSetRecipient, OpSetEmail, OpAddItem, OpUpdateItem, OpRemoveItem, OpReset, OpDispatch}

var injectable = []string{"upload", "link", "open", "save"}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Expect holds netto/vat/total for totals assertions.
	Expect map[string]string `yaml:"expect,omitempty"`

	Count   int    `yaml:"count,omitempty"`
	Value   string `yaml:"value,omitempty"`
	Mode    string `yaml:"mode,omitempty"`
	Op      string `yaml:"op,omitempty"`
	Outcome string `yaml:"outcome,omitempty"`
}

// Assertion types.
const (
	AssertTotals     = "totals"
	AssertItemCount  = "item_count"
	AssertRecipient  = "recipient"
	AssertDeliveries = "deliveries"
	AssertPublished  = "published"
	AssertOpened     = "opened"
	AssertTraceCount = "trace_count"
)

var knownAssertions = []string{AssertTotals, AssertItemCount, AssertRecipient, AssertDeliveries, AssertPublished, AssertOpened, AssertTraceCount}

// LoadScenario reads and validates a scenario file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// Validate checks that every step and assertion is well formed.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	for i, st := range s.Steps {
		if !slices.Contains(knownOps, st.Op) {
			return fmt.Errorf("step %d: unknown op %q", i+1, st.Op)
		}
		switch st.Op {
		case OpUpdateItem:
			if st.Item == "" || st.Field == "" {
				return fmt.Errorf("step %d: update_item requires item and field", i+1)
			}
		case OpRemoveItem:
			if st.Item == "" {
				return fmt.Errorf("step %d: remove_item requires item", i+1)
			}
		case OpDispatch:
			if st.Mode != "local" && st.Mode != "remote" {
				return fmt.Errorf("step %d: dispatch mode must be local or remote, got %q", i+1, st.Mode)
			}
			if st.Fail != "" && !slices.Contains(injectable, st.Fail) {
				return fmt.Errorf("step %d: cannot inject failure into %q (want one of %v)", i+1, st.Fail, injectable)
			}
		}
	}

	for i, a := range s.Assertions {
		if !slices.Contains(knownAssertions, a.Type) {
			return fmt.Errorf("assertion %d: unknown type %q", i+1, a.Type)
		}
		if a.Type == AssertTotals {
			for _, k := range []string{"netto", "vat", "total"} {
				if _, ok := a.Expect[k]; !ok {
					return fmt.Errorf("assertion %d: totals requires expect.%s", i+1, k)
				}
			}
		}
		if a.Type == AssertTraceCount && a.Op == "" {
			return fmt.Errorf("assertion %d: trace_count requires op", i+1)
		}
	}

	if s.Currency != "" && len(s.Currency) != 3 {
		return fmt.Errorf("currency must be a three-letter code, got %q", s.Currency)
	}
	return nil
}

// field parses the step's field name.
func (st Step) field() (valuation.Field, error) {
	return valuation.ParseField(st.Field)
}
