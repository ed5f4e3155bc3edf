package blob

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// FSStore stores objects as files below a root directory and links to them
// through a public base URL, e.g. a directory served by a static web server
// or synced to a bucket. Without a base URL, links are file:// URLs.
//
//	root/
//	  documents/
//	    valuation-acme-1700000000000.pdf
type FSStore struct {
	root    string
	baseURL string
	mu      sync.RWMutex
}

// NewFSStore creates the root directory if needed.
func NewFSStore(root, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("create blob root %s: %w", root, err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve blob root %s: %w", root, err)
	}
	return &FSStore{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload writes data to the file named by key.
func (s *FSStore) Upload(ctx context.Context, key string, data []byte) (Ref, error) {
	if err := ValidateKey(key); err != nil {
		return Ref{}, err
	}
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.filePath(key)
	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil {
		return Ref{}, fmt.Errorf("create blob directory: %w", err)
	}
	// Write to a sibling temp file first so readers never see a partial object.
	tmp := p + ".part"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return Ref{}, fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return Ref{}, fmt.Errorf("commit blob: %w", err)
	}
	return Ref{Key: key}, nil
}

// ShareableURL returns the public link for an uploaded object.
func (s *FSStore) ShareableURL(ctx context.Context, ref Ref) (string, error) {
	if err := ValidateKey(ref.Key); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(s.filePath(ref.Key)); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, ref.Key)
		}
		return "", fmt.Errorf("stat blob: %w", err)
	}
	return s.urlFor(ref.Key), nil
}

// List walks the directory below prefix. A missing prefix yields no objects.
func (s *FSStore) List(ctx context.Context, prefix string) ([]Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := s.root
	if p := strings.Trim(prefix, "/"); p != "" {
		dir = s.filePath(p)
	}

	objs := []Object{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == dir {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), ".part") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		created, _ := CreatedAtFromName(d.Name())
		objs = append(objs, Object{
			Name:      d.Name(),
			Path:      key,
			URL:       s.urlFor(key),
			CreatedAt: created,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	sortNewestFirst(objs)
	return objs, nil
}

func (s *FSStore) filePath(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *FSStore) urlFor(key string) string {
	if s.baseURL == "" {
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(s.filePath(key))}
		return u.String()
	}
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + path.Join(segs...)
}
