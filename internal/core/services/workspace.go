package services

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
	"github.com/custodia-labs/paperpilot/internal/logger"
)

// Ensure WorkspaceService implements the interface.
var _ driving.WorkspaceService = (*WorkspaceService)(nil)

// Workspace export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WorkspaceService manages saved research sessions.
type WorkspaceService struct {
	store driven.WorkspaceStore
}

// NewWorkspaceService creates a new workspace service.
func NewWorkspaceService(store driven.WorkspaceStore) *WorkspaceService {
	return &WorkspaceService{store: store}
}

// Save stores the session and returns its file name.
func (s *WorkspaceService) Save(name string, session domain.Session) (string, error) {
	filename, err := s.store.Save(name, session)
	if err != nil {
		return "", fmt.Errorf("save workspace: %w", err)
	}
	logger.Info("Saved workspace %q as %s", name, filename)
	return filename, nil
}

// Load returns a stored workspace.
func (s *WorkspaceService) Load(filename string) (*domain.Workspace, error) {
	return s.store.Load(filename)
}

// List returns stored workspaces, newest first.
func (s *WorkspaceService) List() ([]domain.WorkspaceInfo, error) {
	return s.store.List()
}

// Delete removes a workspace.
func (s *WorkspaceService) Delete(filename string) error {
	return s.store.Delete(filename)
}

// Clear removes every workspace.
func (s *WorkspaceService) Clear() (int, error) {
	n, err := s.store.Clear()
	if err != nil {
		return n, fmt.Errorf("clear workspaces: %w", err)
	}
	logger.Info("Removed %d workspaces", n)
	return n, nil
}

// Export returns the stored JSON unchanged, or the workspace rendered as YAML.
func (s *WorkspaceService) Export(filename, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return s.store.Export(filename)
	case FormatYAML, "yml":
		ws, err := s.store.Load(filename)
		if err != nil {
			return nil, err
		}
		out, err := yaml.Marshal(ws)
		if err != nil {
			return nil, fmt.Errorf("encode workspace as yaml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidInput, format)
	}
}

// Import validates and stores workspace JSON.
func (s *WorkspaceService) Import(filename string, data []byte) (string, error) {
	stored, err := s.store.Import(filename, data)
	if err != nil {
		return "", fmt.Errorf("import workspace: %w", err)
	}
	logger.Info("Imported workspace as %s", stored)
	return stored, nil
}
