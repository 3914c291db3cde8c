package domain

import "strings"

// Answer is a generated response to a question.
type Answer struct {
	// Question is the question as asked.
	Question string

	// Text is the model output, returned verbatim.
	Text string

	// Sources are the passages supplied to the model as context.
	Sources []RetrievalHit
}

// SourceNames returns the distinct source names in retrieval order.
func (a Answer) SourceNames() []string {
	seen := make(map[string]bool, len(a.Sources))
	names := make([]string, 0, len(a.Sources))
	for _, hit := range a.Sources {
		if seen[hit.Passage.Source] {
			continue
		}
		seen[hit.Passage.Source] = true
		names = append(names, hit.Passage.Source)
	}
	return names
}

// FormatContext renders hits as attributed context blocks:
// "[source]" on one line followed by the passage text, blocks separated by a blank line.
func FormatContext(hits []RetrievalHit) string {
	blocks := make([]string, 0, len(hits))
	for _, hit := range hits {
		blocks = append(blocks, "["+hit.Passage.Source+"]\n"+hit.Passage.Text)
	}
	return strings.Join(blocks, "\n\n")
}
