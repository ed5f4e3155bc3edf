// Package blob provides storage for published documents.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when a ref does not name a stored object.
var ErrNotFound = errors.New("blob not found")

// Store publishes documents and hands out shareable links to them.
type Store interface {
	// Upload stores data under key and returns a ref to it.
	// An existing object with the same key is overwritten.
	Upload(ctx context.Context, key string, data []byte) (Ref, error)

	// ShareableURL returns a link that lets a recipient retrieve the object.
	ShareableURL(ctx context.Context, ref Ref) (string, error)

	// List returns the objects whose key starts with prefix, newest first.
	List(ctx context.Context, prefix string) ([]Object, error)
}

// Ref identifies an uploaded object.
type Ref struct {
	Key string
}

// Object describes a stored document.
type Object struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateKey rejects keys that are empty, absolute or escape the store root.
func ValidateKey(key string) error {
	if key == "" {
		return errors.New("empty blob key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return fmt.Errorf("invalid blob key %q", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("invalid blob key %q", key)
		}
	}
	return nil
}

// CreatedAtFromName parses the creation time from the trailing numeric
// token of a name such as "valuation-acme-1700000000000.pdf", read as Unix
// milliseconds. Names without such a token report false.
func CreatedAtFromName(name string) (time.Time, bool) {
	base := strings.TrimSuffix(name, path.Ext(name))
	i := strings.LastIndexAny(base, "-_")
	token := base[i+1:]
	if token == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(token, 10, 64)
	if err != nil || ms < 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// sortNewestFirst orders objects by creation time, newest first, then by path.
func sortNewestFirst(objs []Object) {
	sort.SliceStable(objs, func(i, j int) bool {
		if !objs[i].CreatedAt.Equal(objs[j].CreatedAt) {
			return objs[i].CreatedAt.After(objs[j].CreatedAt)
		}
		return objs[i].Path < objs[j].Path
	})
}
