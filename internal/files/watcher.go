package files

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a directory must stay quiet before a batch of
// changes is delivered.
const DefaultSettle = 2 * time.Second

// Watcher reports batches of new or rewritten documents in a directory.
type Watcher struct {
	dir    string
	exts   map[string]bool
	settle time.Duration
	logger *slog.Logger
}

// NewWatcher creates a watcher for dir. Only files whose extension is in
// exts are reported; an empty exts reports everything.
func NewWatcher(dir string, exts []string, settle time.Duration, logger *slog.Logger) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:    dir,
		exts:   extensionSet(exts),
		settle: settle,
		logger: logger.With(slog.String("component", "watcher")),
	}
}

// Run blocks until ctx is done, calling onBatch with the sorted paths that
// changed once the directory has been quiet for the settle period. Errors
// returned by onBatch are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, onBatch func(ctx context.Context, paths []string) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("Watching directory", slog.String("dir", w.dir))

	pending := map[string]bool{}
	timer := time.NewTimer(w.settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(w.settle)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", slog.String("error", err.Error()))

		case <-timer.C:
			batch := sortedKeys(pending)
			pending = map[string]bool{}
			w.logger.Info("Detected changed documents", slog.Int("count", len(batch)))
			if err := onBatch(ctx, batch); err != nil {
				w.logger.Error("Batch processing failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	name := filepath.Base(event.Name)
	// Office lock files such as ~$report.docx.
	if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
		return false
	}
	return len(w.exts) == 0 || w.exts[strings.ToLower(filepath.Ext(name))]
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
