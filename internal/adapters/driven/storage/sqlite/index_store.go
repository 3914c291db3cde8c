package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/paperpilot/internal/adapters/driven/storage"
	"github.com/custodia-labs/paperpilot/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
	"github.com/custodia-labs/paperpilot/internal/logger"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// On-disk layout under the data directory.
const (
	IndexDirName = "vectorstore"
	DBFileName   = "index.db"
	tmpPrefix    = IndexDirName + ".tmp-"
	oldPrefix    = IndexDirName + ".old-"
)

// Metadata keys in the index_meta table.
const (
	metaGeneration = "generation"
	metaModel      = "model"
	metaDimensions = "dimensions"
	metaCreatedAt  = "created_at"
	metaDocuments  = "documents"
)

// IndexStore persists the vector index as a SQLite database in its own
// directory. Every build writes a fresh database in a temporary directory
// and swaps it into place, so readers only ever see complete generations.
type IndexStore struct {
	dataDir  string
	embedder driven.EmbeddingService

	mu     sync.Mutex
	cached *domain.Index
}

// NewIndexStore creates an index store rooted at dataDir.
// If dataDir is empty, defaults to ~/.paperpilot/data.
// Leftovers from an interrupted build are cleaned up.
func NewIndexStore(dataDir string, embedder driven.EmbeddingService) (*IndexStore, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".paperpilot", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &IndexStore{
		dataDir:  dataDir,
		embedder: embedder,
	}
	if err := s.recover(); err != nil {
		return nil, fmt.Errorf("recovering index directory: %w", err)
	}
	return s, nil
}

// Dir returns the live index directory.
func (s *IndexStore) Dir() string {
	return filepath.Join(s.dataDir, IndexDirName)
}

// Path returns the live index database path.
func (s *IndexStore) Path() string {
	return filepath.Join(s.Dir(), DBFileName)
}

// Build embeds the passages and replaces the live index.
func (s *IndexStore) Build(ctx context.Context, passages []domain.Passage) (*domain.Index, error) {
	ix, err := storage.AssembleIndex(ctx, s.embedder, passages)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLeftovers(tmpPrefix)

	tmpDir := filepath.Join(s.dataDir, tmpPrefix+ix.Generation)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return nil, fmt.Errorf("creating build directory: %w: %w", domain.ErrStorage, err)
	}
	if err := writeIndex(ctx, filepath.Join(tmpDir, DBFileName), ix); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("writing index: %w: %w", domain.ErrStorage, err)
	}
	if err := s.swap(tmpDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("replacing index: %w: %w", domain.ErrStorage, err)
	}

	s.cached = ix
	logger.Info("Built index generation %s (%d passages from %d documents)",
		ix.Generation, len(ix.Passages), len(ix.Documents))
	return ix, nil
}

// Load returns the live index, reusing the cached copy while the on-disk
// generation is unchanged.
func (s *IndexStore) Load(ctx context.Context) (*domain.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.openLive()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("reading index metadata: %w: %w", domain.ErrStorage, err)
	}
	if s.cached != nil && s.cached.Generation == meta[metaGeneration] {
		return s.cached, nil
	}

	ix, err := indexFromMeta(meta)
	if err != nil {
		return nil, fmt.Errorf("parsing index metadata: %w: %w", domain.ErrStorage, err)
	}
	if err := storage.CheckModel(s.embedder, ix.Model, ix.Dimensions); err != nil {
		return nil, err
	}

	ix.Passages, err = readPassages(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("reading passages: %w: %w", domain.ErrStorage, err)
	}

	logger.Debug("Loaded index generation %s (%d passages)", ix.Generation, len(ix.Passages))
	s.cached = ix
	return ix, nil
}

// Search embeds the query and returns the k nearest passages.
func (s *IndexStore) Search(ctx context.Context, index *domain.Index, query string, k int) ([]domain.RetrievalHit, error) {
	return storage.Search(ctx, s.embedder, index, query, k)
}

// Status reads the live index metadata without loading vectors.
func (s *IndexStore) Status(ctx context.Context) (domain.IndexStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.openLive()
	if err != nil {
		return domain.IndexStatus{}, err
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return domain.IndexStatus{}, fmt.Errorf("reading index metadata: %w: %w", domain.ErrStorage, err)
	}
	ix, err := indexFromMeta(meta)
	if err != nil {
		return domain.IndexStatus{}, fmt.Errorf("parsing index metadata: %w: %w", domain.ErrStorage, err)
	}

	status := ix.Status()
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM passages").Scan(&status.Passages); err != nil {
		return domain.IndexStatus{}, fmt.Errorf("counting passages: %w: %w", domain.ErrStorage, err)
	}
	return status, nil
}

// Close drops the cached index. Databases are opened per call, so there is
// no connection to release.
func (s *IndexStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	return nil
}

// openLive opens the live database.
func (s *IndexStore) openLive() (*sql.DB, error) {
	path := s.Path()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrIndexNotFound
		}
		return nil, fmt.Errorf("checking index: %w: %w", domain.ErrStorage, err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index: %w: %w", domain.ErrStorage, err)
	}
	return db, nil
}

// swap moves tmpDir into the live location. The previous index is moved
// aside first and only deleted once the new one is in place.
func (s *IndexStore) swap(tmpDir string) error {
	live := s.Dir()

	var old string
	if _, err := os.Stat(live); err == nil {
		old = filepath.Join(s.dataDir, oldPrefix+uuid.New().String())
		if err := os.Rename(live, old); err != nil {
			return fmt.Errorf("moving previous index aside: %w", err)
		}
	}

	if err := os.Rename(tmpDir, live); err != nil {
		if old != "" {
			_ = os.Rename(old, live)
		}
		return fmt.Errorf("moving new index into place: %w", err)
	}
	if err := syncDir(s.dataDir); err != nil {
		logger.Warn("Failed to sync %s: %v", s.dataDir, err)
	}

	if old != "" {
		if err := os.RemoveAll(old); err != nil {
			logger.Warn("Failed to remove previous index %s: %v", old, err)
		}
	}
	return nil
}

// recover restores a previous index if a crash happened between the two
// renames of swap, then removes build leftovers.
func (s *IndexStore) recover() error {
	live := s.Dir()
	if _, err := os.Stat(live); errors.Is(err, fs.ErrNotExist) {
		olds, err := filepath.Glob(filepath.Join(s.dataDir, oldPrefix+"*"))
		if err != nil {
			return err
		}
		if len(olds) > 0 {
			newest := newestDir(olds)
			logger.Warn("Restoring index from interrupted build: %s", newest)
			if err := os.Rename(newest, live); err != nil {
				return err
			}
		}
	}

	s.removeLeftovers(tmpPrefix)
	s.removeLeftovers(oldPrefix)
	return nil
}

func (s *IndexStore) removeLeftovers(prefix string) {
	matches, err := filepath.Glob(filepath.Join(s.dataDir, prefix+"*"))
	if err != nil {
		return
	}
	for _, m := range matches {
		if err := os.RemoveAll(m); err != nil {
			logger.Warn("Failed to remove stale index directory %s: %v", m, err)
		}
	}
}

func newestDir(paths []string) string {
	newest := paths[0]
	var newestTime time.Time
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.ModTime().After(newestTime) {
			newest, newestTime = p, info.ModTime()
		}
	}
	return newest
}

// writeIndex creates a new database at path holding the whole index.
func writeIndex(ctx context.Context, path string, ix *domain.Index) error {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrate(db, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	docsJSON, err := json.Marshal(ix.Documents)
	if err != nil {
		return fmt.Errorf("marshalling documents: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	meta := map[string]string{
		metaGeneration: ix.Generation,
		metaModel:      ix.Model,
		metaDimensions: strconv.Itoa(ix.Dimensions),
		metaCreatedAt:  ix.CreatedAt.Format(time.RFC3339),
		metaDocuments:  string(docsJSON),
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO index_meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("saving metadata %s: %w", key, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (position, id, source, content, embedding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range ix.Passages {
		if _, err := stmt.ExecContext(ctx, p.Position, p.ID, p.Source, p.Text,
			encodeVector(p.Embedding)); err != nil {
			return fmt.Errorf("saving passage %d: %w", p.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func readMeta(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT key, value FROM index_meta")
	if err != nil {
		return nil, fmt.Errorf("querying metadata: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning metadata: %w", err)
		}
		meta[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating metadata: %w", err)
	}
	if meta[metaGeneration] == "" {
		return nil, errors.New("index has no generation")
	}
	return meta, nil
}

func indexFromMeta(meta map[string]string) (*domain.Index, error) {
	dims, err := strconv.Atoi(meta[metaDimensions])
	if err != nil {
		return nil, fmt.Errorf("parsing dimensions: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, meta[metaCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	var docs []string
	if err := json.Unmarshal([]byte(meta[metaDocuments]), &docs); err != nil {
		return nil, fmt.Errorf("parsing documents: %w", err)
	}

	return &domain.Index{
		Generation: meta[metaGeneration],
		Model:      meta[metaModel],
		Dimensions: dims,
		CreatedAt:  createdAt,
		Documents:  docs,
	}, nil
}

func readPassages(ctx context.Context, db *sql.DB) ([]domain.Passage, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT position, id, source, content, embedding
		FROM passages ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	var passages []domain.Passage //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.Passage
		var blob []byte
		if err := rows.Scan(&p.Position, &p.ID, &p.Source, &p.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		if p.Embedding, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("passage %d: %w", p.Position, err)
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}
	return passages, nil
}

// migrate runs all pending migrations.
func migrate(db *sql.DB, fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_vector_index.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}
