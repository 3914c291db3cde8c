package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

type rebuildResult struct {
	report *domain.IndexReport
	err    error
}

func startWatcher(t *testing.T, f *fixture, dir string) <-chan rebuildResult {
	t.Helper()

	results := make(chan rebuildResult, 4)
	w := NewWatcher(f.indexing, dir, 50*time.Millisecond, func(r *domain.IndexReport, err error) {
		results <- rebuildResult{report: r, err: err}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	return results
}

func TestWatcher_RebuildsOnNewDocument(t *testing.T) {
	f := newFixture(t, 4)
	dir := t.TempDir()
	results := startWatcher(t, f, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc1.pdf"), []byte("%PDF"), 0600))

	select {
	case r := <-results:
		require.NoError(t, r.err)
		assert.Equal(t, []string{"doc1.pdf"}, r.report.Indexed)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for rebuild")
	}
	assert.Equal(t, 1, f.index.Builds())
}

func TestWatcher_IgnoresUnsupportedFiles(t *testing.T) {
	f := newFixture(t, 4)
	dir := t.TempDir()
	results := startWatcher(t, f, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".doc1.pdf"), []byte("x"), 0600))

	select {
	case r := <-results:
		t.Fatalf("unexpected rebuild: %+v", r)
	case <-time.After(300 * time.Millisecond):
	}
	assert.Equal(t, 0, f.index.Builds())
}

func TestWatcher_Relevant(t *testing.T) {
	f := newFixture(t, 4)
	w := NewWatcher(f.indexing, t.TempDir(), 0, nil)
	assert.Equal(t, DefaultDebounce, w.debounce)

	tests := []struct {
		name string
		file string
		op   fsnotify.Op
		want bool
	}{
		{"create pdf", "a.pdf", fsnotify.Create, true},
		{"write pdf", "a.pdf", fsnotify.Write, true},
		{"remove pdf", "a.pdf", fsnotify.Remove, true},
		{"rename pdf", "a.pdf", fsnotify.Rename, true},
		{"chmod pdf", "a.pdf", fsnotify.Chmod, false},
		{"hidden pdf", ".a.pdf", fsnotify.Create, false},
		{"other extension", "a.txt", fsnotify.Create, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := fsnotify.Event{Name: filepath.Join("/papers", tt.file), Op: tt.op}
			assert.Equal(t, tt.want, w.relevant(event))
		})
	}
}

func TestWatcher_RebuildSkipsUnchangedSet(t *testing.T) {
	f := newFixture(t, 4)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc1.pdf"), []byte("%PDF"), 0600))

	var got []rebuildResult
	w := NewWatcher(f.indexing, dir, time.Millisecond, func(r *domain.IndexReport, err error) {
		got = append(got, rebuildResult{r, err})
	})
	ctx := context.Background()

	w.rebuild(ctx, false)
	require.Len(t, got, 1)
	assert.Equal(t, 1, f.index.Builds())

	w.rebuild(ctx, false)
	assert.Len(t, got, 1, "same names, nothing rewritten")

	w.rebuild(ctx, true)
	assert.Len(t, got, 2, "rewritten document forces a rebuild")
	assert.Equal(t, 2, f.index.Builds())
}
