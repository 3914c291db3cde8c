// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// AnswerReceived carries a generated answer back to the ask view.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// IndexStatusLoaded carries the index summary shown in the ask view header.
type IndexStatusLoaded struct {
	Status domain.IndexStatus
	Err    error
}

// WorkspaceSaved signals that the session was written to a workspace file.
type WorkspaceSaved struct {
	Filename string
	Err      error
}

// WorkspacesLoaded carries the list of saved workspaces.
type WorkspacesLoaded struct {
	Workspaces []domain.WorkspaceInfo
	Err        error
}

// WorkspaceOpened carries a loaded workspace to restore into the ask view.
type WorkspaceOpened struct {
	Workspace *domain.Workspace
	Err       error
}

// WorkspaceDeleted signals a workspace file was removed.
type WorkspaceDeleted struct {
	Filename string
	Err      error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question box and transcript.
	ViewAsk
	// ViewWorkspaces browses saved sessions.
	ViewWorkspaces
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewWorkspaces:
		return "workspaces"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
