// Package domain defines the core business entities for PaperPilot.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A source paper supplied for indexing
//   - Passage: An attributed slice of document text with its embedding
//   - Index: One persisted generation of passages
//   - Answer: A generated response with the passages it was grounded on
//   - Workspace: A saved research session
//
// It also holds the error taxonomy shared by every layer, including the
// classified GenerationError returned by generative model calls.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
