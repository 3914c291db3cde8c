// Package tui provides an interactive terminal user interface for paperpilot.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
type Ports struct {
	// QA answers questions. Required.
	QA driving.QAService

	// Indexing reports what is indexed. Optional.
	Indexing driving.IndexingService

	// Workspace saves and restores sessions. Optional.
	Workspace driving.WorkspaceService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	qa driving.QAService,
	indexing driving.IndexingService,
	workspace driving.WorkspaceService,
) *Ports {
	return &Ports{
		QA:        qa,
		Indexing:  indexing,
		Workspace: workspace,
	}
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.QA == nil {
		return ErrMissingQAService
	}
	return nil
}
