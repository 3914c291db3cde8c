// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - EmbeddingService: Turns text into vectors
//   - IndexStore: Persists and searches the vector index
//   - Generator: Remote generative model
//   - TextExtractor: PDF to plain text
//   - PromptStore: Editable prompt templates
//   - WorkspaceStore: Saved research sessions
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
