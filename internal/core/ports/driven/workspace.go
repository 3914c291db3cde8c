package driven

import "github.com/custodia-labs/paperpilot/internal/core/domain"

// WorkspaceStore persists saved research sessions.
// Workspaces are addressed by their stored file name.
type WorkspaceStore interface {
	// Save stores the session under a new file and returns its file name.
	Save(name string, session domain.Session) (string, error)

	// Load returns the workspace stored under filename.
	// Returns domain.ErrWorkspaceNotFound if it does not exist.
	Load(filename string) (*domain.Workspace, error)

	// List returns stored workspaces, newest first.
	// Unreadable files are skipped.
	List() ([]domain.WorkspaceInfo, error)

	// Delete removes a workspace.
	// Returns domain.ErrWorkspaceNotFound if it does not exist.
	Delete(filename string) error

	// Clear removes every workspace and returns how many were deleted.
	Clear() (int, error)

	// Export returns the raw stored bytes of a workspace.
	Export(filename string) ([]byte, error)

	// Import validates and stores workspace bytes under filename,
	// returning the stored file name.
	Import(filename string, data []byte) (string, error)
}
