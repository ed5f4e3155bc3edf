package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/valuer/internal/blob"
	"github.com/roach88/valuer/internal/compose"
	"github.com/roach88/valuer/internal/mail"
	"github.com/roach88/valuer/internal/metrics"
	"github.com/roach88/valuer/internal/render"
	"github.com/roach88/valuer/internal/store"
	"github.com/roach88/valuer/internal/valuation"
)

// Mode selects the delivery path.
type Mode string

const (
	// Local saves the document to the operator's machine.
	Local Mode = "local"
	// Remote publishes the document and opens a pre-filled mail.
	Remote Mode = "remote"
)

// Journal records completed deliveries.
type Journal interface {
	WriteDelivery(ctx context.Context, d store.Delivery) (int64, error)
}

// Outcome describes a completed delivery.
type Outcome struct {
	Mode        Mode
	Name        string // file name, or blob key for remote deliveries
	Location    string // saved path, or shareable URL for remote deliveries
	ComposeURL  string // remote only
	Fingerprint string
	Draft       string // fingerprint of the request
	Totals      compose.TotalsBlock
	CreatedAt   time.Time
}

// Dispatcher runs the delivery pipeline. Collaborators are injected; only
// the renderer is required.
type Dispatcher struct {
	renderer    render.Renderer
	profile     compose.Profile
	blobs       blob.Store
	mailer      *mail.Composer
	opener      mail.Opener
	saver       Saver
	journal     Journal
	composeBase string
	spoolDir    string
	now         func() time.Time
	recorder    metrics.Recorder
	logger      *slog.Logger

	inFlight atomic.Bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithProfile sets the labels, currency and issuer. Defaults to compose.DefaultProfile.
func WithProfile(p compose.Profile) Option { return func(d *Dispatcher) { d.profile = p } }

// WithBlobStore sets the store remote deliveries upload to.
func WithBlobStore(s blob.Store) Option { return func(d *Dispatcher) { d.blobs = s } }

// WithMailComposer sets the message body template. Defaults to the built-in one.
func WithMailComposer(c *mail.Composer) Option { return func(d *Dispatcher) { d.mailer = c } }

// WithOpener sets how the compose URL is presented.
func WithOpener(o mail.Opener) Option { return func(d *Dispatcher) { d.opener = o } }

// WithSaver sets where local deliveries are saved. Defaults to the working directory.
func WithSaver(s Saver) Option { return func(d *Dispatcher) { d.saver = s } }

// WithJournal records every successful delivery.
func WithJournal(j Journal) Option { return func(d *Dispatcher) { d.journal = j } }

// WithComposeBase overrides mail.DefaultComposeBase.
func WithComposeBase(base string) Option { return func(d *Dispatcher) { d.composeBase = base } }

// WithSpoolDir sets the directory for transient spool files. Defaults to os.TempDir.
func WithSpoolDir(dir string) Option { return func(d *Dispatcher) { d.spoolDir = dir } }

// WithClock sets the wall clock used for file names and journal stamps.
func WithClock(now func() time.Time) Option { return func(d *Dispatcher) { d.now = now } }

func WithRecorder(r metrics.Recorder) Option { return func(d *Dispatcher) { d.recorder = r } }

func WithLogger(l *slog.Logger) Option { return func(d *Dispatcher) { d.logger = l } }

// New creates a Dispatcher.
func New(renderer render.Renderer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		renderer: renderer,
		profile:  compose.DefaultProfile(),
		saver:    DirSaver{Dir: "."},
		now:      time.Now,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultComposer = sync.OnceValues(func() (*mail.Composer, error) {
	return mail.NewComposer("")
})

// Dispatch composes, renders and delivers the draft along the chosen path.
//
// A second call while one is outstanding returns ErrInFlight without doing
// anything. Every other failure is logged here, once, and returned as an
// *Error naming the failed step.
func (d *Dispatcher) Dispatch(ctx context.Context, req valuation.Request, mode Mode) (*Outcome, error) {
	if mode != Local && mode != Remote {
		return nil, fmt.Errorf("unknown dispatch mode %q", mode)
	}
	if !d.inFlight.CompareAndSwap(false, true) {
		d.recorder.IncDispatchOutcome(string(mode), metrics.ResultBusy)
		return nil, ErrInFlight
	}
	defer d.inFlight.Store(false)

	// External steps are not cancellable once started.
	ctx = context.WithoutCancel(ctx)

	begin := time.Now()
	out, err := d.run(ctx, req, mode)
	d.recorder.ObserveDispatchDuration(string(mode), time.Since(begin))

	if err != nil {
		step, _ := FailedStep(err)
		d.logger.Error("dispatch failed", "mode", mode, "step", step, "error", errors.Unwrap(err))
		d.recorder.IncDispatchStepFailure(strings.ToLower(string(step)))
		d.recorder.IncDispatchOutcome(string(mode), metrics.ResultFailed)
		return nil, err
	}

	d.recorder.IncDispatchOutcome(string(mode), metrics.ResultSuccess)
	d.logger.Info("dispatch complete", "mode", mode, "name", out.Name, "location", out.Location)

	if d.journal != nil {
		_, jerr := d.journal.WriteDelivery(ctx, store.Delivery{
			Mode:        string(out.Mode),
			Recipient:   req.RecipientName,
			Name:        out.Name,
			Location:    out.Location,
			Fingerprint: out.Fingerprint,
			Draft:       out.Draft,
			Netto:       out.Totals.Netto,
			VAT:         out.Totals.VAT,
			Total:       out.Totals.Total,
			CreatedAt:   out.CreatedAt,
		})
		if jerr != nil {
			d.logger.Warn("delivery not journaled", "name", out.Name, "error", jerr)
		}
	}

	return out, nil
}

// InFlight reports whether a dispatch is outstanding.
func (d *Dispatcher) InFlight() bool {
	return d.inFlight.Load()
}

func (d *Dispatcher) run(ctx context.Context, req valuation.Request, mode Mode) (*Outcome, error) {
	d.logger.Debug("dispatch step", "step", StepCompose, "items", len(req.Items))
	tree, err := compose.Compose(req, d.profile)
	if err != nil {
		return nil, stepError(StepCompose, err)
	}

	d.logger.Debug("dispatch step", "step", StepRender, "format", d.renderer.Extension())
	data, err := d.renderer.Render(tree)
	if err != nil {
		return nil, stepError(StepRender, err)
	}

	fp, err := tree.Fingerprint()
	if err != nil {
		return nil, stepError(StepCompose, err)
	}
	draft, err := valuation.RequestFingerprint(req)
	if err != nil {
		return nil, stepError(StepCompose, err)
	}

	created := d.now()
	out := &Outcome{
		Mode:        mode,
		Name:        Filename(req.RecipientName, created, d.renderer.Extension()),
		Fingerprint: fp,
		Draft:       draft,
		Totals:      tree.Totals,
		CreatedAt:   created,
	}

	if mode == Local {
		err = d.deliverLocal(ctx, out, data)
	} else {
		err = d.deliverRemote(ctx, out, req, tree, data)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Dispatcher) deliverLocal(ctx context.Context, out *Outcome, data []byte) error {
	d.logger.Debug("dispatch step", "step", StepSpool, "bytes", len(data))
	spool, err := d.spool(data)
	if err != nil {
		return stepError(StepSpool, err)
	}
	defer d.release(spool)

	d.logger.Debug("dispatch step", "step", StepSave, "name", out.Name)
	loc, err := d.saver.Save(ctx, spool, out.Name)
	if err != nil {
		return stepError(StepSave, err)
	}
	out.Location = loc
	return nil
}

func (d *Dispatcher) deliverRemote(ctx context.Context, out *Outcome, req valuation.Request, tree compose.Tree, data []byte) error {
	if d.blobs == nil {
		return stepError(StepUpload, errors.New("no blob store configured"))
	}
	out.Name = BlobPrefix + out.Name

	d.logger.Debug("dispatch step", "step", StepUpload, "key", out.Name, "bytes", len(data))
	ref, err := d.blobs.Upload(ctx, out.Name, data)
	if err != nil {
		return stepError(StepUpload, err)
	}

	d.logger.Debug("dispatch step", "step", StepLink, "key", ref.Key)
	link, err := d.blobs.ShareableURL(ctx, ref)
	if err != nil {
		return stepError(StepLink, err)
	}
	out.Location = link

	mailer := d.mailer
	if mailer == nil {
		if mailer, err = defaultComposer(); err != nil {
			return stepError(StepSummary, err)
		}
	}
	msg, err := mailer.Compose(tree, req.RecipientName, req.RecipientEmail, link)
	if err != nil {
		return stepError(StepSummary, err)
	}
	u, err := mail.ComposeURL(d.composeBase, msg)
	if err != nil {
		return stepError(StepSummary, err)
	}
	out.ComposeURL = u

	if d.opener == nil {
		return stepError(StepOpen, errors.New("no opener configured"))
	}
	d.logger.Debug("dispatch step", "step", StepOpen)
	if err := d.opener.Open(ctx, u); err != nil {
		return stepError(StepOpen, err)
	}
	return nil
}

// spool writes data to a transient file and returns its path.
func (d *Dispatcher) spool(data []byte) (string, error) {
	f, err := os.CreateTemp(d.spoolDir, "valuer-spool-*."+d.renderer.Extension())
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write spool file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close spool file: %w", err)
	}
	return f.Name(), nil
}

func (d *Dispatcher) release(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		d.logger.Warn("spool not released", "path", path, "error", err)
	}
}
