package driven

import "context"

// Generator produces text from a prompt using a remote generative model.
//
// Failures are returned as *domain.GenerationError so callers can tell
// transient conditions (overloaded, timeout) from rejected input.
// Provider adapters make a single attempt; the retrying decorator wraps
// them with the shared backoff policy.
type Generator interface {
	// Generate returns the model's text for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
