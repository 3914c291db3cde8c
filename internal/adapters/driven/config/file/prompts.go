package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
	"github.com/custodia-labs/paperpilot/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// Files are only created on first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnswer: `You are a helpful AI research assistant.
Use the following document excerpts to answer the user's question.
Cite sources like [filename.pdf] where applicable.
If unsure, say you don't have enough information.

Context:
%s

Question: %s

Answer:`,

	driven.PromptCompareMethods: `You are a senior academic researcher.
Compare the methodologies of the following papers. For each paper, summarise the approach in one or two sentences, then write a short comparison covering:
- Shared techniques and assumptions,
- Key differences in models, data and experimental setup,
- Relative strengths and limitations.

Refer to each paper by its bracketed file name.

%s

Comparison:`,

	driven.PromptLiteratureReview: `You are a senior academic researcher.
Given excerpts from several papers (abstracts, intros, or conclusions),
write a **concise literature review paragraph** that:
- Summarizes common themes and contributions,
- Identifies differences in approaches,
- Notes research gaps or future opportunities,
- Uses academic tone (formal but readable).

Keep it under 250 words.
Text from papers:
%s`,

	driven.PromptExtractDatasets: `You are an expert AI research assistant.
Read the following research paper text carefully and extract both:
1. **Datasets** used, mentioned, or implied.
2. **Evaluation metrics** or performance measures mentioned.

For each, produce two clear Markdown tables with the following columns:

### Datasets
| Dataset Name | Domain/Type | Usage Context | Example Mention (short quote) |

### Metrics
| Metric Name | Purpose / What It Measures | Example Mention (short quote) |

If any dataset or metric is only implied, mark it with *(inferred)*.
If none are found, explicitly say "No datasets detected." or "No metrics detected."

Paper text:
%s

Respond only with Markdown tables and brief headers, no extra commentary.`,

	driven.PromptSuggestQuestions: `You are an expert research assistant.
Read the following text from a research paper and generate %d insightful, diverse questions
that a researcher might ask to better understand the paper.

Focus on methods, results, datasets, evaluation, and innovation aspects.

Text:
%s

Return only a numbered list of questions.`,
}

// placeholders lists the fmt verbs each prompt must keep, in order.
var placeholders = map[string][]string{
	driven.PromptAnswer:           {"%s", "%s"},
	driven.PromptCompareMethods:   {"%s"},
	driven.PromptLiteratureReview: {"%s"},
	driven.PromptExtractDatasets:  {"%s"},
	driven.PromptSuggestQuestions: {"%d", "%s"},
}

// DefaultPrompt returns the embedded default for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.paperpilot/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// A user file that dropped or reordered its placeholders is ignored in
// favour of the embedded default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	if !hasPlaceholders(prompt, placeholders[name]) {
		logger.Warn("prompt %q in %s is missing placeholders %v, using default", name, s.promptDir, placeholders[name])
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			prompt = defaultPrompt
		}
	}

	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// hasPlaceholders reports whether verbs appear in prompt in order.
func hasPlaceholders(prompt string, verbs []string) bool {
	rest := strings.ReplaceAll(prompt, "%%", "")
	for _, verb := range verbs {
		i := strings.Index(rest, verb)
		if i < 0 {
			return false
		}
		rest = rest[i+len(verb):]
	}
	return true
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# PaperPilot Prompts

This directory contains customisable prompts sent to the language model.

## Files

- ` + "`answer.txt`" + ` - Grounded question answering over retrieved passages
- ` + "`compare_methods.txt`" + ` - Methodology comparison across papers
- ` + "`literature_review.txt`" + ` - Literature review synthesis
- ` + "`extract_datasets.txt`" + ` - Dataset and metric extraction
- ` + "`suggest_questions.txt`" + ` - Research question suggestions

## Format Placeholders

Prompts use Go fmt placeholders, filled in this order:
- answer: ` + "`%s`" + ` context, then ` + "`%s`" + ` question
- suggest_questions: ` + "`%d`" + ` count, then ` + "`%s`" + ` text
- all others: a single ` + "`%s`" + `

A file that loses its placeholders is ignored and the built-in prompt is used.
Write ` + "`%%`" + ` for a literal percent sign.
`
	return os.WriteFile(path, []byte(content), 0600)
}
