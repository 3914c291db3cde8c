package driven

import "github.com/custodia-labs/paperpilot/internal/core/domain"

// Splitter cuts extracted document text into passages.
type Splitter interface {
	// Name returns the splitter name for logging.
	Name() string

	// Passages splits text and tags every passage with source.
	// Blank text yields no passages.
	Passages(source, text string) []domain.Passage
}
