package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/roach88/valuer/internal/blob"
	"github.com/roach88/valuer/internal/compose"
	"github.com/roach88/valuer/internal/dispatch"
	"github.com/roach88/valuer/internal/form"
	"github.com/roach88/valuer/internal/render"
	"github.com/roach88/valuer/internal/store"
	"github.com/roach88/valuer/internal/testutil"
	"github.com/roach88/valuer/internal/valuation"
)

// Epoch is the dispatch clock's first reading. Each dispatch that gets as
// far as naming its document advances the clock by one second.
var Epoch = time.UnixMilli(1700000000000)

// errInjected is returned by collaborators a step asked to fail.
var errInjected = errors.New("injected failure")

// Harness holds the collaborators of one scenario run.
type Harness struct {
	store      *store.Store
	model      *form.Model
	dispatcher *dispatch.Dispatcher
	blobs      *blob.MemStore
	opener     *recordingOpener
	saver      *memSaver
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. A step that does not
// meet its expectation is recorded as an error and the run continues.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()
	st.SetClock(testutil.NewStepClock(Epoch, time.Millisecond).Now)

	spool, err := os.MkdirTemp("", "valuer-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create spool dir: %w", err)
	}
	defer os.RemoveAll(spool)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	model, err := form.Open(ctx, st, sequentialIDs(), form.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open draft: %w", err)
	}

	profile := compose.DefaultProfile()
	if scenario.Currency != "" {
		profile.Currency = scenario.Currency
	}

	h := &Harness{
		store:  st,
		model:  model,
		blobs:  blob.NewMemStore(),
		opener: &recordingOpener{},
		saver:  &memSaver{files: map[string][]byte{}},
	}
	h.dispatcher = dispatch.New(render.Text{},
		dispatch.WithProfile(profile),
		dispatch.WithBlobStore(h.blobs),
		dispatch.WithOpener(h.opener),
		dispatch.WithSaver(h.saver),
		dispatch.WithJournal(st),
		dispatch.WithSpoolDir(spool),
		dispatch.WithClock(testutil.NewStepClock(Epoch, time.Second).Now),
		dispatch.WithLogger(logger),
	)

	result := NewResult()
	for i, step := range scenario.Steps {
		ev := h.execute(ctx, step)
		ev.Seq = int64(i + 1)
		result.Trace = append(result.Trace, ev)

		want := step.Expect
		if want == "" {
			want = OutcomeOK
		}
		if ev.Outcome != want {
			result.AddError(fmt.Sprintf("step %d (%s): expected outcome %s, got %s", ev.Seq, step.Op, want, ev.Outcome))
		}
	}

	result.Draft = model.Request()
	result.Deliveries, err = st.ReadDeliveries(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read deliveries: %w", err)
	}
	objs, err := h.blobs.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}
	result.Published = make([]string, len(objs))
	for i, o := range objs {
		result.Published[i] = o.Path
	}
	result.Opened = h.opener.urls()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// execute runs one step and records it.
func (h *Harness) execute(ctx context.Context, step Step) TraceEvent {
	ev := TraceEvent{Op: step.Op, Args: stepArgs(step)}

	var err error
	switch step.Op {
	case OpSetRecipient:
		err = h.model.SetRecipient(ctx, step.Value)
	case OpSetEmail:
		err = h.model.SetRecipientEmail(ctx, step.Value)
	case OpAddItem:
		var it valuation.Item
		if it, err = h.model.AddItem(ctx); err == nil {
			ev.Result = map[string]string{"id": it.ID}
		}
	case OpUpdateItem:
		var field valuation.Field
		if field, err = step.field(); err == nil {
			err = h.model.UpdateItem(ctx, step.Item, field, step.Value)
		}
	case OpRemoveItem:
		err = h.model.RemoveItem(ctx, step.Item)
	case OpReset:
		err = h.model.Reset(ctx)
	case OpDispatch:
		var out *dispatch.Outcome
		if out, err = h.dispatch(ctx, step); err == nil {
			ev.Result = map[string]string{
				"name":     out.Name,
				"location": out.Location,
				"total":    out.Totals.Total,
			}
		}
	}

	ev.Outcome = outcomeOf(err)
	if err != nil || step.Op == OpDispatch {
		return ev
	}

	// Mutations report the draft size and, when computable, its total.
	if ev.Result == nil {
		ev.Result = map[string]string{}
	}
	req := h.model.Request()
	ev.Result["items"] = strconv.Itoa(len(req.Items))
	if totals, terr := valuation.ComputeTotals(req.Items); terr == nil {
		ev.Result["total"] = valuation.FormatAmount(totals.Total)
	}
	return ev
}

// dispatch runs one dispatch with the requested failure injected.
func (h *Harness) dispatch(ctx context.Context, step Step) (*dispatch.Outcome, error) {
	switch step.Fail {
	case "upload":
		h.blobs.UploadErr = errInjected
		defer func() { h.blobs.UploadErr = nil }()
	case "link":
		h.blobs.URLErr = errInjected
		defer func() { h.blobs.URLErr = nil }()
	case "open":
		h.opener.setErr(errInjected)
		defer h.opener.setErr(nil)
	case "save":
		h.saver.setErr(errInjected)
		defer h.saver.setErr(nil)
	}
	return h.dispatcher.Dispatch(ctx, h.model.Request(), dispatch.Mode(step.Mode))
}

// outcomeOf maps a step error to its recorded outcome.
func outcomeOf(err error) string {
	var ce *valuation.CompositionError
	switch {
	case err == nil:
		return OutcomeOK
	case valuation.IsValidationError(err):
		return OutcomeRejected
	case errors.Is(err, valuation.ErrItemNotFound):
		return OutcomeNotFound
	case errors.Is(err, valuation.ErrUnknownField):
		return OutcomeUnknownField
	case errors.Is(err, dispatch.ErrInFlight):
		return OutcomeBusy
	case errors.As(err, &ce):
		return OutcomeComposition
	}
	if step, ok := dispatch.FailedStep(err); ok {
		return "failed:" + strings.ToLower(string(step))
	}
	return OutcomeError
}

func stepArgs(step Step) map[string]string {
	args := map[string]string{}
	for k, v := range map[string]string{
		"item":  step.Item,
		"field": step.Field,
		"value": step.Value,
		"mode":  step.Mode,
		"fail":  step.Fail,
	} {
		if v != "" {
			args[k] = v
		}
	}
	if len(args) == 0 {
		return nil
	}
	return args
}

// sequentialIDs yields item-1, item-2, ...
func sequentialIDs() form.IDGenerator {
	return &counterIDs{}
}

type counterIDs struct {
	mu sync.Mutex
	n  int
}

func (c *counterIDs) Generate() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return "item-" + strconv.Itoa(c.n)
}

// recordingOpener keeps the URLs it is asked to open.
type recordingOpener struct {
	mu     sync.Mutex
	opened []string
	err    error
}

func (o *recordingOpener) Open(_ context.Context, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.opened = append(o.opened, url)
	return nil
}

func (o *recordingOpener) setErr(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

func (o *recordingOpener) urls() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string{}, o.opened...)
}

// memSaver keeps saved documents in memory under "local/{name}".
type memSaver struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (s *memSaver) Save(_ context.Context, src, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	loc := "local/" + name
	s.files[loc] = data
	return loc, nil
}

func (s *memSaver) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
