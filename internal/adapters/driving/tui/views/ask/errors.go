package ask

import "errors"

// Error definitions for the ask view.
var (
	// ErrNoQAService indicates that no QA service was provided.
	ErrNoQAService = errors.New("qa service is required")

	// ErrNoWorkspaceService indicates that sessions cannot be saved.
	ErrNoWorkspaceService = errors.New("workspace service is not configured")

	// ErrEmptySession is returned when saving a session with nothing in it.
	ErrEmptySession = errors.New("nothing to save yet")
)
