package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/services"
)

// longPaper is comfortably above every minimum text length.
var longPaper = strings.Repeat("We evaluate on ImageNet and report top-1 accuracy and F1. ", 6)

func TestCompareCmd_NeedsTwoPapers(t *testing.T) {
	env := setupTestServices(t)

	_, err := run(t, "compare", filepath.Join(env.papersDir, "a.txt"))

	assert.Error(t, err)
	assert.Empty(t, env.generator.prompts)
}

func TestCompareCmd_PrintsComparison(t *testing.T) {
	env := setupTestServices(t)
	env.generator.reply = "Both papers use encoder-decoder models."
	withMethods := writePaper(t, env.papersDir, "c.txt",
		"Introduction\nMethods\nWe fine-tune BERT on SQuAD.\nResults\nF1 of 88.")

	out, err := run(t, "compare", filepath.Join(env.papersDir, "a.txt"), withMethods)

	require.NoError(t, err)
	assert.Contains(t, out, "Both papers use encoder-decoder models.")

	prompt := env.generator.lastPrompt()
	assert.Contains(t, prompt, "[a.txt]\n"+services.NoMethodsSection)
	assert.Contains(t, prompt, "[c.txt]\nWe fine-tune BERT on SQuAD.")
}

func TestCompareCmd_MissingPaper(t *testing.T) {
	env := setupTestServices(t)

	_, err := run(t, "compare", filepath.Join(env.papersDir, "a.txt"), filepath.Join(env.papersDir, "missing.txt"))

	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestReviewCmd(t *testing.T) {
	env := setupTestServices(t)
	env.generator.reply = "Recent work focuses on attention."

	out, err := run(t, "review", filepath.Join(env.papersDir, "a.txt"), filepath.Join(env.papersDir, "b.md"))

	require.NoError(t, err)
	assert.Contains(t, out, "Recent work focuses on attention.")
	prompt := env.generator.lastPrompt()
	assert.Contains(t, prompt, paperA)
	assert.Contains(t, prompt, paperB)
}

func TestReviewCmd_EmptyPaper(t *testing.T) {
	env := setupTestServices(t)
	empty := writePaper(t, env.papersDir, "empty.txt", "  \n")

	out, err := run(t, "review", empty)

	require.NoError(t, err)
	assert.Contains(t, out, services.NoReviewText)
	assert.Empty(t, env.generator.prompts)
}

func TestExtractCmd_ShortText(t *testing.T) {
	env := setupTestServices(t)

	out, err := run(t, "extract", filepath.Join(env.papersDir, "a.txt"))

	require.NoError(t, err)
	assert.Contains(t, out, services.NoExtractionText)
	assert.Empty(t, env.generator.prompts)
}

func TestExtractCmd(t *testing.T) {
	env := setupTestServices(t)
	env.generator.reply = "Datasets: ImageNet\nMetrics: top-1 accuracy, F1"
	paper := writePaper(t, env.papersDir, "long.txt", longPaper)

	out, err := run(t, "extract", paper)

	require.NoError(t, err)
	assert.Contains(t, out, "Datasets: ImageNet")
	assert.Contains(t, env.generator.lastPrompt(), "ImageNet")
}

func TestExtractCmd_NeedsOnePaper(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "extract")

	assert.Error(t, err)
}

func TestSuggestCmd_ShortText(t *testing.T) {
	env := setupTestServices(t)

	out, err := run(t, "suggest", filepath.Join(env.papersDir, "a.txt"))

	require.NoError(t, err)
	assert.Contains(t, out, "Not enough text to suggest questions.")
	assert.Empty(t, env.generator.prompts)
}

func TestSuggestCmd(t *testing.T) {
	env := setupTestServices(t)
	env.generator.reply = "Here are some questions:\n1. Why ImageNet?\n- How is F1 computed?\n3) Does it generalise?"
	paper := writePaper(t, env.papersDir, "long.txt", longPaper)

	out, err := run(t, "suggest", "-n", "2", paper)

	require.NoError(t, err)
	assert.Contains(t, out, "1. Why ImageNet?")
	assert.Contains(t, out, "2. How is F1 computed?")
	assert.NotContains(t, out, "generalise")
}

func TestSuggestCmd_CountFlag(t *testing.T) {
	flag := suggestCmd.Flags().Lookup("count")

	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestDocumentsFromPaths(t *testing.T) {
	docs := documentsFromPaths([]string{"/papers/a.pdf", "b.txt"})

	require.Len(t, docs, 2)
	assert.Equal(t, "a.pdf", docs[0].Name)
	assert.Equal(t, "/papers/a.pdf", docs[0].Path)
	assert.Equal(t, "b.txt", docs[1].Name)
}
