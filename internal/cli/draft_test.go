package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShow_FreshDraft(t *testing.T) {
	h := newCLIHarness(t)

	r := h.mustRun("show")
	assert.Contains(t, r.stdout, "Recipient: (none)")
	assert.Contains(t, r.stdout, "id-1")
	assert.Contains(t, r.stdout, "Netto: 0.00 NOK")
	assert.Contains(t, r.stdout, "Total: 0.00 NOK")
	assert.FileExists(t, filepath.Join(h.dir, "valuer.db"))
}

func TestDraft_EditsPersistAcrossRuns(t *testing.T) {
	h := newCLIHarness(t)
	h.seedDesk()

	var v draftView
	h.jsonData(&v, "show")
	assert.Equal(t, "Nordby AS", v.RecipientName)
	assert.Equal(t, "post@nordby.example", v.RecipientEmail)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "id-1", v.Items[0].ID)
	assert.Equal(t, "Desk", v.Items[0].Name)
	assert.Equal(t, "100", v.Items[0].UnitPrice)
	require.NotNil(t, v.Totals)
	assert.Equal(t, "100.00", v.Totals.Netto)
	assert.Equal(t, "25.00", v.Totals.VAT)
	assert.Equal(t, "125.00", v.Totals.Total)
}

func TestRecipient_WithEmailCommitsOnce(t *testing.T) {
	h := newCLIHarness(t)
	path := filepath.Join(h.dir, "valuer.prom")

	h.mustRun("--metrics-file", path, "recipient", "Nordby AS", "--email", "post@nordby.example")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `valuer_draft_mutations_total{op="set_recipient_contact",result="success"} 1`)
	assert.NotContains(t, string(data), `op="set_recipient"`)
	assert.NotContains(t, string(data), `op="set_recipient_email"`)
}

func TestItemAdd_ReportsNewID(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun("recipient", "Nordby AS")

	r := h.mustRun("item", "add")
	assert.Contains(t, r.stdout, "Added item id-2")

	var v draftView
	h.jsonData(&v, "show")
	assert.Len(t, v.Items, 2)
}

func TestItemRemove_LastItemRejected(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun("recipient", "Nordby AS")

	r := h.run("item", "remove", "id-1")
	assert.Equal(t, ExitFailure, r.code)
	assert.Contains(t, r.stderr, "Error [E101]")

	var v draftView
	h.jsonData(&v, "show")
	assert.Len(t, v.Items, 1)
}

func TestItemRemove(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun("recipient", "Nordby AS")
	h.mustRun("item", "add")

	h.mustRun("item", "remove", "id-1")

	var v draftView
	h.jsonData(&v, "show")
	require.Len(t, v.Items, 1)
	assert.Equal(t, "id-2", v.Items[0].ID)
}

func TestItemUpdate_Errors(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun("recipient", "Nordby AS")

	r := h.run("item", "update", "nope", "name", "Desk")
	assert.Equal(t, ExitFailure, r.code)
	assert.Contains(t, r.stderr, "Error [E102]")

	r = h.run("item", "update", "id-1", "colour", "red")
	assert.Equal(t, ExitFailure, r.code)
	assert.Contains(t, r.stderr, "Error [E103]")

	r = h.run("item", "update", "id-1")
	assert.Equal(t, ExitCommandError, r.code)
	assert.Contains(t, r.stderr, "Error:")
}

func TestShow_InvalidPriceHidesTotals(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun("recipient", "Nordby AS")
	h.mustRun("item", "update", "id-1", "price", "abc")

	r := h.mustRun("show")
	assert.Contains(t, r.stdout, "Totals unavailable")
}

func TestImport(t *testing.T) {
	h := newCLIHarness(t)
	path := filepath.Join(h.dir, "request.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`recipient_name: Berg AS
items:
  - name: Chair
    unit_price: "40"
  - id: keep-me
    name: Table
    unit_price: "60"
`), 0o644))

	h.mustRun("import", path)

	var v draftView
	h.jsonData(&v, "show")
	assert.Equal(t, "Berg AS", v.RecipientName)
	require.Len(t, v.Items, 2)
	assert.NotEmpty(t, v.Items[0].ID)
	assert.Equal(t, "keep-me", v.Items[1].ID)
	require.NotNil(t, v.Totals)
	assert.Equal(t, "125.00", v.Totals.Total)
}

func TestImport_Errors(t *testing.T) {
	h := newCLIHarness(t)

	empty := filepath.Join(h.dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("recipient_name: Berg AS\nitems: []\n"), 0o644))
	r := h.run("import", empty)
	assert.Equal(t, ExitFailure, r.code)
	assert.Contains(t, r.stderr, "Error [E101]")

	r = h.run("import", filepath.Join(h.dir, "missing.yaml"))
	assert.Equal(t, ExitCommandError, r.code)
	assert.Contains(t, r.stderr, "Error [E004]")
}

func TestReset(t *testing.T) {
	h := newCLIHarness(t)
	h.seedDesk()

	h.mustRun("reset")

	var v draftView
	h.jsonData(&v, "show")
	assert.Empty(t, v.RecipientName)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "id-2", v.Items[0].ID)
	assert.Empty(t, v.Items[0].Name)
}

func TestEdit_ScriptedSession(t *testing.T) {
	driver := &scriptedDriver{
		selects: []int{0, 5}, // Set recipient, Done
		inputs:  []string{"Nordby AS", "post@nordby.example"},
	}
	h := newCLIHarness(t).withDriver(driver)

	r := h.mustRun("edit")
	assert.Contains(t, r.stdout, "Recipient: Nordby AS <post@nordby.example>")

	var v draftView
	h.jsonData(&v, "show")
	assert.Equal(t, "Nordby AS", v.RecipientName)
}

func TestEdit_AbortKeepsChanges(t *testing.T) {
	driver := &scriptedDriver{
		selects: []int{0}, // Set recipient, then the queue runs dry
		inputs:  []string{"Nordby AS", ""},
	}
	h := newCLIHarness(t).withDriver(driver)

	h.mustRun("edit")

	var v draftView
	h.jsonData(&v, "show")
	assert.Equal(t, "Nordby AS", v.RecipientName)
}

func TestConfigErrors(t *testing.T) {
	h := newCLIHarness(t)

	r := h.run("--config", filepath.Join(h.dir, "missing.yaml"), "show")
	assert.Equal(t, ExitCommandError, r.code)
	assert.Contains(t, r.stderr, "Error [E002]")

	t.Setenv("VALUER_FORMAT", "docx")
	r = h.run("show")
	assert.Equal(t, ExitCommandError, r.code)
	assert.Contains(t, r.stderr, "Error [E002]")
}

func TestInvalidOutputFormat(t *testing.T) {
	h := newCLIHarness(t)

	r := h.run("--format", "yaml", "show")
	assert.Equal(t, ExitCommandError, r.code)
	assert.Contains(t, r.stderr, `Error: invalid format "yaml"`)
}

func TestDBFlagOverridesConfig(t *testing.T) {
	h := newCLIHarness(t)
	db := filepath.Join(h.dir, "other", "draft.db")
	require.NoError(t, os.MkdirAll(filepath.Dir(db), 0o755))

	h.mustRun("--db", db, "recipient", "Nordby AS")
	assert.FileExists(t, db)
	assert.NoFileExists(t, filepath.Join(h.dir, "valuer.db"))
}
