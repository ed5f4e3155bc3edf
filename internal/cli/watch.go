package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces the burst of events editors emit on save.
const defaultDebounce = 250 * time.Millisecond

// fileWatcher calls onChange once per burst of changes to a single file.
// The parent directory is watched so that editors which replace the file
// through a rename keep triggering events.
type fileWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
	ready    func() // called once the watch is registered; tests hook it
}

func (w *fileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	if w.ready != nil {
		w.ready()
	}

	debounce := w.debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				slog.Debug("request file changed", "path", event.Name, "op", event.Op.String())
				pending = time.After(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", "error", err)

		case <-pending:
			pending = nil
			w.onChange()
		}
	}
}
