package mcp

import (
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// QA answers questions and searches passages.
	QA driving.QAService

	// Indexing rebuilds and describes the index.
	Indexing driving.IndexingService

	// Workspace exposes saved sessions as resources.
	Workspace driving.WorkspaceService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.QA == nil {
		return ErrMissingQAService
	}
	// Indexing and Workspace are optional
	return nil
}
