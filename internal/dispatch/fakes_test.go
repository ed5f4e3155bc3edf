package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roach88/valuer/internal/compose"
	"github.com/roach88/valuer/internal/metrics"
	"github.com/roach88/valuer/internal/store"
)

var errBoom = errors.New("boom")

// failingRenderer always fails.
type failingRenderer struct{}

func (failingRenderer) Render(compose.Tree) ([]byte, error) { return nil, errBoom }
func (failingRenderer) Extension() string                   { return "pdf" }

// blockingRenderer signals when Render starts and waits for release.
type blockingRenderer struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingRenderer() *blockingRenderer {
	return &blockingRenderer{started: make(chan struct{}), release: make(chan struct{})}
}

func (r *blockingRenderer) Render(compose.Tree) ([]byte, error) {
	close(r.started)
	<-r.release
	return []byte("doc"), nil
}
func (r *blockingRenderer) Extension() string { return "txt" }

type recordingOpener struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (o *recordingOpener) Open(_ context.Context, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls = append(o.urls, url)
	return o.err
}

func (o *recordingOpener) opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.urls...)
}

type failingSaver struct {
	called int
}

func (s *failingSaver) Save(context.Context, string, string) (string, error) {
	s.called++
	return "", errBoom
}

type memJournal struct {
	entries []store.Delivery
	err     error
}

func (j *memJournal) WriteDelivery(_ context.Context, d store.Delivery) (int64, error) {
	if j.err != nil {
		return 0, j.err
	}
	j.entries = append(j.entries, d)
	return int64(len(j.entries)), nil
}

type recordedOutcome struct {
	path   string
	result metrics.ResultLabel
}

// fakeRecorder captures dispatch metrics.
type fakeRecorder struct {
	metrics.NoopRecorder
	mu        sync.Mutex
	outcomes  []recordedOutcome
	steps     []string
	durations int
}

func (r *fakeRecorder) IncDispatchOutcome(path string, result metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, recordedOutcome{path, result})
}

func (r *fakeRecorder) IncDispatchStepFailure(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
}

func (r *fakeRecorder) ObserveDispatchDuration(string, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations++
}
