package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Saver stores a locally addressable document under its suggested name and
// returns where it ended up.
type Saver interface {
	Save(ctx context.Context, src, name string) (string, error)
}

// DirSaver copies documents into a directory.
type DirSaver struct {
	Dir string
}

// Save copies src to Dir/name. The target appears atomically.
func (s DirSaver) Save(_ context.Context, src, name string) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	in, err := os.Open(src) // #nosec G304 -- src is our own spool file
	if err != nil {
		return "", fmt.Errorf("open spool: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, ".valuer-save-*")
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("copy document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close output file: %w", err)
	}

	dst := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("move document into place: %w", err)
	}

	abs, err := filepath.Abs(dst)
	if err != nil {
		return dst, nil
	}
	return abs, nil
}
