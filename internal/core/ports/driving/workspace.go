package driving

import "github.com/custodia-labs/paperpilot/internal/core/domain"

// WorkspaceService manages saved research sessions.
type WorkspaceService interface {
	// Save stores the session and returns its file name.
	Save(name string, session domain.Session) (string, error)

	// Load returns a stored workspace.
	Load(filename string) (*domain.Workspace, error)

	// List returns stored workspaces, newest first.
	List() ([]domain.WorkspaceInfo, error)

	// Delete removes a workspace.
	Delete(filename string) error

	// Clear removes every workspace and returns how many were deleted.
	Clear() (int, error)

	// Export renders a workspace in the given format ("json" or "yaml").
	Export(filename, format string) ([]byte, error)

	// Import validates and stores workspace JSON.
	Import(filename string, data []byte) (string, error)
}
