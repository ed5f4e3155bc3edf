package blob

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
)

// MemStore is an in-memory Store for tests. Failures can be injected per
// operation.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	calls   MemCalls

	// UploadErr, when set, is returned by every Upload.
	UploadErr error
	// URLErr, when set, is returned by every ShareableURL.
	URLErr error
}

// MemCalls counts method invocations.
type MemCalls struct {
	Upload       int
	ShareableURL int
	List         int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

func (m *MemStore) Upload(ctx context.Context, key string, data []byte) (Ref, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Upload++

	if m.UploadErr != nil {
		return Ref{}, m.UploadErr
	}
	if err := ValidateKey(key); err != nil {
		return Ref{}, err
	}
	m.objects[key] = append([]byte(nil), data...)
	return Ref{Key: key}, nil
}

func (m *MemStore) ShareableURL(ctx context.Context, ref Ref) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.ShareableURL++

	if m.URLErr != nil {
		return "", m.URLErr
	}
	if _, ok := m.objects[ref.Key]; !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref.Key)
	}
	return "mem://" + ref.Key, nil
}

func (m *MemStore) List(ctx context.Context, prefix string) ([]Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.List++

	objs := []Object{}
	for key := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		name := path.Base(key)
		created, _ := CreatedAtFromName(name)
		objs = append(objs, Object{Name: name, Path: key, URL: "mem://" + key, CreatedAt: created})
	}
	sortNewestFirst(objs)
	return objs, nil
}

// Get returns the stored bytes for key.
func (m *MemStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}

// Len returns the number of stored objects.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Calls returns a copy of the invocation counters.
func (m *MemStore) Calls() MemCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}
