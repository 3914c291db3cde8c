// Package mcp provides an MCP (Model Context Protocol) server adapter for PaperPilot.
// It lets AI assistants ask grounded questions about the indexed papers, search
// passages and trigger a reindex.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// ErrMissingQAService is returned when the QA service is not provided.
var ErrMissingQAService = errors.New("mcp: QA service is required")

// ErrMissingIndexingService is returned by index tools when no indexing service is wired.
var ErrMissingIndexingService = errors.New("mcp: indexing service is not configured")

// toolError appends the corrective action for err, if there is one.
func toolError(err error) error {
	if guidance := domain.Guidance(err); guidance != "" {
		return fmt.Errorf("%w. %s", err, guidance)
	}
	return err
}
