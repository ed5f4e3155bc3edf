package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/remote_retry.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := MarshalTrace(scenario.Name, first)
	require.NoError(t, err)
	b, err := MarshalTrace(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_UnexpectedOutcomeFails(t *testing.T) {
	scenario := &Scenario{
		Name: "unexpected",
		Steps: []Step{
			{Op: OpRemoveItem, Item: "item-1"}, // rejected, but no expect given
			{Op: OpAddItem, Expect: OutcomeRejected},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "step 1 (remove_item): expected outcome ok, got rejected")
	assert.Contains(t, result.Errors[1], "step 2 (add_item): expected outcome rejected, got ok")
}

func TestRun_InjectedFailures(t *testing.T) {
	tests := []struct {
		mode string
		fail string
	}{
		{"remote", "upload"},
		{"remote", "link"},
		{"remote", "open"},
		{"local", "save"},
	}
	for _, tt := range tests {
		t.Run(tt.fail, func(t *testing.T) {
			scenario := &Scenario{
				Name: "inject_" + tt.fail,
				Steps: []Step{
					{Op: OpDispatch, Mode: tt.mode, Fail: tt.fail, Expect: "failed:" + tt.fail},
					{Op: OpDispatch, Mode: tt.mode},
				},
				Assertions: []Assertion{
					{Type: AssertDeliveries, Count: 1},
				},
			}

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Equal(t, 1, result.Count(OpDispatch, OutcomeOK))
		})
	}
}

func TestRun_CurrencyOverride(t *testing.T) {
	scenario := &Scenario{
		Name:     "currency",
		Currency: "EUR",
		Steps: []Step{
			{Op: OpUpdateItem, Item: "item-1", Field: "price", Value: "10"},
			{Op: OpDispatch, Mode: "remote"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Opened, 1)
	assert.Contains(t, result.Opened[0], "EUR")
}

func TestRun_FailedAssertionsAreReported(t *testing.T) {
	scenario := &Scenario{
		Name:  "assertions",
		Steps: []Step{{Op: OpSetRecipient, Value: "Nordby AS"}},
		Assertions: []Assertion{
			{Type: AssertRecipient, Value: "Berg AS"},
			{Type: AssertItemCount, Count: 2},
			{Type: AssertTotals, Expect: map[string]string{"netto": "1.00", "vat": "0.25", "total": "1.25"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "Assertion failed: recipient")
	assert.Contains(t, result.Errors[0], `Actual: recipient "Nordby AS"`)
	assert.Contains(t, result.Errors[0], "[1] set_recipient")
	assert.Contains(t, result.Errors[1], "Expected: 2 items")
	assert.Contains(t, result.Errors[2], "Assertion failed: totals")
}
