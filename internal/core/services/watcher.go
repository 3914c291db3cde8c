package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
	"github.com/custodia-labs/paperpilot/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driving.DocumentWatcher = (*Watcher)(nil)

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 2 * time.Second

// Watcher rebuilds the index when the documents in a directory change.
// Bursts of events are collapsed into one rebuild after the debounce window.
type Watcher struct {
	indexing *IndexingService
	dir      string
	debounce time.Duration
	onResult func(*domain.IndexReport, error)
}

// NewWatcher creates a watcher for dir. onResult, if not nil, receives
// the outcome of every rebuild the watcher triggers.
func NewWatcher(
	indexing *IndexingService,
	dir string,
	debounce time.Duration,
	onResult func(*domain.IndexReport, error),
) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		indexing: indexing,
		dir:      dir,
		debounce: debounce,
		onResult: onResult,
	}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for document changes", w.dir)

	var (
		fire      <-chan time.Time
		rewritten bool
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("Watch event: %s %s", event.Op, event.Name)
			if event.Has(fsnotify.Write) {
				rewritten = true
			}
			fire = time.After(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-fire:
			fire = nil
			w.rebuild(ctx, rewritten)
			rewritten = false
		}
	}
}

// relevant reports whether the event can change the indexed document set.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if !w.indexing.extractor.Supports(name) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// rebuild reindexes when the name set changed or a document was rewritten.
func (w *Watcher) rebuild(ctx context.Context, rewritten bool) {
	docs, err := w.indexing.Documents(w.dir)
	if err != nil {
		w.report(nil, err)
		return
	}

	changed, err := w.indexing.NeedsReindex(ctx, docs)
	if err != nil {
		w.report(nil, err)
		return
	}
	if !changed && !rewritten {
		logger.Debug("Document set unchanged, skipping rebuild")
		return
	}

	w.report(w.indexing.Reindex(ctx, docs))
}

func (w *Watcher) report(report *domain.IndexReport, err error) {
	if err != nil {
		logger.Warn("Rebuild failed: %v", err)
	}
	if w.onResult != nil {
		w.onResult(report, err)
	}
}
