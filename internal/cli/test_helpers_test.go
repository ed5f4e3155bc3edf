package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/valuer/internal/form"
	"github.com/roach88/valuer/internal/mail"
	"github.com/roach88/valuer/internal/prompt"
	"github.com/roach88/valuer/internal/testutil"
)

// epoch is the frozen wall clock of every CLI test.
var epoch = time.UnixMilli(1700000000000)

var valuerEnv = []string{
	"VALUER_DB", "VALUER_OUTPUT_DIR", "VALUER_FORMAT",
	"VALUER_BLOB_ROOT", "VALUER_BLOB_BASE_URL",
	"VALUER_COMPOSE_BASE", "VALUER_MAIL_TEMPLATE", "VALUER_PRINT_ONLY", "VALUER_OPEN_COMMAND",
	"VALUER_CURRENCY", "VALUER_ISSUER_NAME", "VALUER_ISSUER_EMAIL", "VALUER_ISSUER_LOGO",
}

// cliHarness runs commands against a database in a temporary directory,
// with fixed ids, a frozen clock and an opener that records URLs.
type cliHarness struct {
	t      *testing.T
	dir    string
	opts   *RootOptions
	opened *bytes.Buffer
}

type result struct {
	stdout string
	stderr string
	code   int
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	dir := t.TempDir()
	chdirForTest(t, dir)
	for _, k := range valuerEnv {
		t.Setenv(k, "")
	}

	opened := &bytes.Buffer{}
	return &cliHarness{
		t:   t,
		dir: dir,
		opts: &RootOptions{
			ids:      form.NewFixedGenerator("id-1", "id-2", "id-3", "id-4", "id-5", "id-6"),
			now:      testutil.NewStepClock(epoch, 0).Now,
			opener:   mail.WriterOpener{W: opened},
			envFiles: []string{filepath.Join(dir, "missing.env")},
		},
		opened: opened,
	}
}

func (h *cliHarness) withDriver(d prompt.Driver) *cliHarness {
	h.opts.driver = d
	return h
}

func (h *cliHarness) run(args ...string) result {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), h.opts, args, &stdout, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

// mustRun fails the test when the command does not succeed.
func (h *cliHarness) mustRun(args ...string) result {
	h.t.Helper()
	r := h.run(args...)
	require.Equal(h.t, ExitSuccess, r.code, "%v failed:\nstdout: %s\nstderr: %s", args, r.stdout, r.stderr)
	return r
}

// jsonData runs a command with --format json and decodes its data payload.
func (h *cliHarness) jsonData(v any, args ...string) {
	h.t.Helper()
	r := h.mustRun(append([]string{"--format", "json"}, args...)...)
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(h.t, json.Unmarshal([]byte(r.stdout), &resp), r.stdout)
	require.Equal(h.t, "ok", resp.Status)
	require.NoError(h.t, json.Unmarshal(resp.Data, v))
}

// seedDesk leaves the draft at recipient Nordby AS with one Desk at 100.00.
func (h *cliHarness) seedDesk() {
	h.t.Helper()
	h.mustRun("recipient", "Nordby AS", "--email", "post@nordby.example")
	h.mustRun("item", "update", "id-1", "name", "Desk")
	h.mustRun("item", "update", "id-1", "price", "100")
	h.mustRun("item", "update", "id-1", "description", "Solid oak desk")
}

// scriptedDriver answers prompts from queues.
type scriptedDriver struct {
	selects []int
	inputs  []string
	infos   []string
}

func (d *scriptedDriver) Select(context.Context, prompt.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return 0, prompt.ErrAborted
	}
	v := d.selects[0]
	d.selects = d.selects[1:]
	return v, nil
}

func (d *scriptedDriver) Input(context.Context, prompt.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", prompt.ErrAborted
	}
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *scriptedDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	return false, prompt.ErrAborted
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
