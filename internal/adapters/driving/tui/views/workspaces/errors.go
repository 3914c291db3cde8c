package workspaces

import "errors"

// ErrNoWorkspaceService indicates that no workspace service was provided.
var ErrNoWorkspaceService = errors.New("workspace service is not configured")
