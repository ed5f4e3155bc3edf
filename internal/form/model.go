package form

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/valuer/internal/metrics"
	"github.com/roach88/valuer/internal/valuation"
)

// DefaultSnapshotKey is the single key the draft is stored under.
const DefaultSnapshotKey = "valuation-request"

// SnapshotStore persists serialized drafts under a key.
// SaveSnapshot overwrites any previous value (last writer wins).
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, key string) (data []byte, found bool, err error)
	SaveSnapshot(ctx context.Context, key string, data []byte) error
}

// Model owns the current draft. It is single-writer and not safe for
// concurrent use.
type Model struct {
	req      valuation.Request
	store    SnapshotStore
	ids      IDGenerator
	key      string
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithRecorder sets the metrics recorder. Defaults to metrics.NoopRecorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(m *Model) { m.recorder = r }
}

// WithSnapshotKey overrides DefaultSnapshotKey.
func WithSnapshotKey(key string) Option {
	return func(m *Model) { m.key = key }
}

// Open loads the persisted draft, or starts a default draft with one blank
// item when no snapshot exists or the stored one is malformed.
// Only a failing store read is an error; a malformed snapshot is logged and
// replaced on the next mutation.
func Open(ctx context.Context, store SnapshotStore, ids IDGenerator, opts ...Option) (*Model, error) {
	m := &Model{
		store:    store,
		ids:      ids,
		key:      DefaultSnapshotKey,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}

	data, found, err := store.LoadSnapshot(ctx, m.key)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if !found {
		m.req = valuation.DefaultRequest(ids.Generate())
		m.logger.Debug("no stored draft, starting blank", "key", m.key)
		return m, nil
	}

	req, err := valuation.DecodeSnapshot(data)
	if err != nil {
		m.req = valuation.DefaultRequest(ids.Generate())
		m.logger.Warn("stored draft is malformed, starting blank", "key", m.key, "error", err)
		return m, nil
	}

	m.req = req
	m.logger.Debug("draft loaded", "key", m.key, "items", len(req.Items))
	return m, nil
}

// Request returns a deep copy of the current draft.
func (m *Model) Request() valuation.Request {
	return m.req.Clone()
}

// AddItem appends a blank item with a fresh id and returns it.
func (m *Model) AddItem(ctx context.Context) (valuation.Item, error) {
	item := valuation.NewItem(m.ids.Generate())

	next := m.req
	next.Items = make([]valuation.Item, 0, len(m.req.Items)+1)
	next.Items = append(next.Items, m.req.Items...)
	next.Items = append(next.Items, item)

	if err := m.commit(ctx, "add_item", next); err != nil {
		return valuation.Item{}, err
	}
	return item, nil
}

// RemoveItem removes the item with the given id, preserving the order of the
// rest. Removing the last remaining item is rejected with a ValidationError
// and leaves the draft unchanged.
func (m *Model) RemoveItem(ctx context.Context, id string) error {
	idx := m.req.IndexOf(id)
	if idx < 0 {
		m.recorder.IncMutation("remove_item", metrics.ResultRejected)
		return fmt.Errorf("remove item %q: %w", id, valuation.ErrItemNotFound)
	}
	if len(m.req.Items) == 1 {
		m.recorder.IncMutation("remove_item", metrics.ResultRejected)
		return &valuation.ValidationError{Message: valuation.MinimumItemsMessage}
	}

	next := m.req
	next.Items = make([]valuation.Item, 0, len(m.req.Items)-1)
	next.Items = append(next.Items, m.req.Items[:idx]...)
	next.Items = append(next.Items, m.req.Items[idx+1:]...)

	return m.commit(ctx, "remove_item", next)
}

// UpdateItem replaces exactly one field of the item with the given id.
// Every other item and field is carried over unchanged.
func (m *Model) UpdateItem(ctx context.Context, id string, field valuation.Field, value string) error {
	idx := m.req.IndexOf(id)
	if idx < 0 {
		m.recorder.IncMutation("update_item", metrics.ResultRejected)
		return fmt.Errorf("update item %q: %w", id, valuation.ErrItemNotFound)
	}

	updated, err := m.req.Items[idx].With(field, value)
	if err != nil {
		m.recorder.IncMutation("update_item", metrics.ResultRejected)
		return fmt.Errorf("update item %q: %w", id, err)
	}

	next := m.req.Clone()
	next.Items[idx] = updated

	return m.commit(ctx, "update_item", next)
}

// SetRecipient sets the name the valuation is made out to.
func (m *Model) SetRecipient(ctx context.Context, name string) error {
	next := m.req.Clone()
	next.RecipientName = name
	return m.commit(ctx, "set_recipient", next)
}

// SetRecipientEmail sets the address prefilled in the compose draft.
// An empty address clears it.
func (m *Model) SetRecipientEmail(ctx context.Context, email string) error {
	next := m.req.Clone()
	next.RecipientEmail = email
	return m.commit(ctx, "set_recipient_email", next)
}

// SetRecipientContact sets name and email in a single commit, so a failed
// persist leaves both unchanged.
func (m *Model) SetRecipientContact(ctx context.Context, name, email string) error {
	next := m.req.Clone()
	next.RecipientName = name
	next.RecipientEmail = email
	return m.commit(ctx, "set_recipient_contact", next)
}

// Replace swaps the whole draft, e.g. from an imported file. Items without an
// id get a fresh one. The replacement must satisfy the item-count floor.
func (m *Model) Replace(ctx context.Context, req valuation.Request) error {
	next := req.Clone()
	for i := range next.Items {
		if next.Items[i].ID == "" {
			next.Items[i].ID = m.ids.Generate()
		}
	}
	if err := next.Validate(); err != nil {
		m.recorder.IncMutation("replace", metrics.ResultRejected)
		return err
	}
	return m.commit(ctx, "replace", next)
}

// Reset restores the default draft with one blank item.
func (m *Model) Reset(ctx context.Context) error {
	return m.commit(ctx, "reset", valuation.DefaultRequest(m.ids.Generate()))
}

// commit persists next and only then makes it the current draft.
func (m *Model) commit(ctx context.Context, op string, next valuation.Request) error {
	data, err := valuation.EncodeSnapshot(next)
	if err != nil {
		m.recorder.IncMutation(op, metrics.ResultFailed)
		return err
	}
	if err := m.store.SaveSnapshot(ctx, m.key, data); err != nil {
		m.recorder.IncMutation(op, metrics.ResultFailed)
		return fmt.Errorf("persist draft: %w", err)
	}

	m.req = next
	m.recorder.IncMutation(op, metrics.ResultSuccess)
	m.logger.Debug("draft updated", "op", op, "items", len(next.Items))
	return nil
}
