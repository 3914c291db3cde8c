// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The QA orchestrator and the indexing pipeline share one IndexStore and one
// EmbeddingService, constructed by the caller and passed in. Every remote
// model call goes through the retrying Generator handed to each service.
package services
