package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
	"github.com/custodia-labs/paperpilot/internal/logger"
)

// Ensure WorkspaceStore implements the interface.
var _ driven.WorkspaceStore = (*WorkspaceStore)(nil)

// WorkspaceDirName is the directory under the data dir holding workspaces.
const WorkspaceDirName = "workspaces"

const workspaceExt = ".json"

// WorkspaceStore keeps each saved session as a JSON file in one directory.
type WorkspaceStore struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// NewWorkspaceStore creates a store rooted at dir, creating it if needed.
func NewWorkspaceStore(dir string) (*WorkspaceStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create workspace directory: %w", err)
	}
	return &WorkspaceStore{dir: dir, now: time.Now}, nil
}

// Dir returns the workspace directory.
func (s *WorkspaceStore) Dir() string {
	return s.dir
}

// Save writes the session as <name>_<timestamp>.json.
func (s *WorkspaceStore) Save(name string, session domain.Session) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if session.SavedAt.IsZero() {
		session.SavedAt = now
	}
	ws := domain.Workspace{
		Name:      name,
		CreatedAt: now,
		Version:   domain.WorkspaceVersion,
		Data:      session,
	}

	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode workspace: %w", err)
	}

	filename := s.freeName(sanitiseName(name) + "_" + now.Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0600); err != nil {
		return "", fmt.Errorf("write workspace: %w", err)
	}

	logger.Debug("saved workspace %q as %s", name, filename)
	return filename, nil
}

// Load reads and decodes a workspace file.
func (s *WorkspaceStore) Load(filename string) (*domain.Workspace, error) {
	data, err := s.Export(filename)
	if err != nil {
		return nil, err
	}
	ws, err := decodeWorkspace(data)
	if err != nil {
		return nil, fmt.Errorf("load workspace %s: %w", filename, err)
	}
	return ws, nil
}

// List returns every readable workspace, newest first.
func (s *WorkspaceStore) List() ([]domain.WorkspaceInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list workspaces: %w", err)
	}

	infos := make([]domain.WorkspaceInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), workspaceExt) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Debug("skipping workspace %s: %v", entry.Name(), err)
			continue
		}
		var header struct {
			Name      string `json:"name"`
			CreatedAt string `json:"created_at"`
		}
		if err := json.Unmarshal(data, &header); err != nil {
			logger.Debug("skipping workspace %s: %v", entry.Name(), err)
			continue
		}

		info := domain.WorkspaceInfo{
			Filename: entry.Name(),
			Name:     header.Name,
			Size:     int64(len(data)),
		}
		if info.Name == "" {
			info.Name = "Unnamed"
		}
		if t, err := time.Parse(time.RFC3339Nano, header.CreatedAt); err == nil {
			info.CreatedAt = t
		}
		infos = append(infos, info)
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.After(infos[j].CreatedAt)
		}
		return infos[i].Filename > infos[j].Filename
	})
	return infos, nil
}

// Delete removes one workspace file.
func (s *WorkspaceStore) Delete(filename string) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, filename)
		}
		return fmt.Errorf("delete workspace: %w", err)
	}
	return nil
}

// Clear removes every workspace file.
func (s *WorkspaceStore) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("clear workspaces: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), workspaceExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return count, fmt.Errorf("clear workspaces: %w", err)
		}
		count++
	}
	return count, nil
}

// Export returns the stored bytes unchanged.
func (s *WorkspaceStore) Export(filename string) ([]byte, error) {
	path, err := s.path(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, filename)
		}
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	return data, nil
}

// Import checks data is a workspace document and stores it verbatim.
// A missing .json suffix is added; an existing file is replaced.
func (s *WorkspaceStore) Import(filename string, data []byte) (string, error) {
	if _, err := decodeWorkspace(data); err != nil {
		return "", fmt.Errorf("import workspace: %w", err)
	}

	filename = filepath.Base(strings.TrimSpace(filename))
	if !strings.HasSuffix(filename, workspaceExt) {
		filename += workspaceExt
	}
	path, err := s.path(filename)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("write workspace: %w", err)
	}
	return filename, nil
}

// path resolves filename inside the store, rejecting anything else.
func (s *WorkspaceStore) path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == workspaceExt ||
		!strings.HasSuffix(filename, workspaceExt) || strings.HasPrefix(filename, ".") {
		return "", fmt.Errorf("%w: workspace file name %q", domain.ErrInvalidInput, filename)
	}
	return filepath.Join(s.dir, filename), nil
}

// freeName appends a counter when a save lands in the same second as another.
func (s *WorkspaceStore) freeName(stem string) string {
	name := stem + workspaceExt
	for i := 2; ; i++ {
		if _, err := os.Stat(filepath.Join(s.dir, name)); errors.Is(err, os.ErrNotExist) {
			return name
		}
		name = fmt.Sprintf("%s_%d%s", stem, i, workspaceExt)
	}
}

func decodeWorkspace(data []byte) (*domain.Workspace, error) {
	var ws domain.Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("%w: not a workspace file: %w", domain.ErrInvalidInput, err)
	}
	if ws.Version == "" {
		ws.Version = domain.WorkspaceVersion
	}
	return &ws, nil
}

// sanitiseName keeps letters, digits, spaces, dashes and underscores.
func sanitiseName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimRight(b.String(), " ")
	if strings.TrimSpace(safe) == "" {
		return "workspace"
	}
	return safe
}
