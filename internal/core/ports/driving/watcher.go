package driving

import (
	"context"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// DocumentWatcher rebuilds the index as documents in a directory change.
type DocumentWatcher interface {
	// Run watches until ctx is cancelled.
	Run(ctx context.Context) error
}

// WatcherFactory creates a watcher for dir. onResult receives the outcome
// of every rebuild and may be nil.
type WatcherFactory func(dir string, onResult func(*domain.IndexReport, error)) DocumentWatcher
