package driven

// PromptStore provides access to prompt templates.
// Implementations may load prompts from files or fall back to built-in defaults.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names. Templates are rendered with fmt verbs in the
// order listed for each name.
const (
	// PromptAnswer grounds an answer in retrieved passages.
	// Placeholders: %s (attributed context), %s (question).
	PromptAnswer = "answer"

	// PromptCompareMethods compares methodology sections.
	// Placeholder: %s (labelled method sections).
	PromptCompareMethods = "compare_methods"

	// PromptLiteratureReview writes a structured review.
	// Placeholder: %s (combined paper text).
	PromptLiteratureReview = "literature_review"

	// PromptExtractDatasets extracts datasets and metrics as tables.
	// Placeholder: %s (paper text).
	PromptExtractDatasets = "extract_datasets"

	// PromptSuggestQuestions proposes research questions.
	// Placeholders: %d (count), %s (paper text).
	PromptSuggestQuestions = "suggest_questions"
)

// AllPromptNames returns every well-known prompt name.
func AllPromptNames() []string {
	return []string{
		PromptAnswer,
		PromptCompareMethods,
		PromptLiteratureReview,
		PromptExtractDatasets,
		PromptSuggestQuestions,
	}
}
