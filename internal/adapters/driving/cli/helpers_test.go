package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperpilot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/paperpilot/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/paperpilot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
	"github.com/custodia-labs/paperpilot/internal/core/services"
	"github.com/custodia-labs/paperpilot/internal/normalisers/plaintext"
	"github.com/custodia-labs/paperpilot/internal/postprocessors/chunker"
)

// stubGenerator answers every prompt with a fixed reply.
type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *stubGenerator) ModelName() string            { return "stub" }
func (g *stubGenerator) Ping(_ context.Context) error { return nil }
func (g *stubGenerator) Close() error                 { return nil }

func (g *stubGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

// testEnv wires the real services over in-memory and temp-dir adapters.
type testEnv struct {
	papersDir string
	generator *stubGenerator
	index     *memory.IndexStore
	config    *memory.ConfigStore
	workspace *services.WorkspaceService
}

const (
	paperA = "The transformer was trained on the WMT 2014 English-German dataset using the Adam optimiser."
	paperB = "We report BLEU scores and compare against recurrent baselines on machine translation."
)

// setupTestServices injects services for the duration of the test and
// resets every command flag afterwards.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		papersDir: t.TempDir(),
		generator: &stubGenerator{reply: "The WMT 2014 dataset was used [a.txt]."},
		index:     memory.NewIndexStore(hashing.NewEmbeddingService(hashing.Config{Dimensions: 256})),
		config:    memory.NewConfigStore(),
	}
	writePaper(t, env.papersDir, "a.txt", paperA)
	writePaper(t, env.papersDir, "b.md", paperB)

	prompts, err := file.NewPromptStore(t.TempDir())
	require.NoError(t, err)
	workspaces, err := file.NewWorkspaceStore(t.TempDir())
	require.NoError(t, err)
	env.workspace = services.NewWorkspaceService(workspaces)

	extractor := plaintext.New()
	SetServices(&Services{
		QA: services.NewQAService(env.index, env.generator, prompts, 0),
		QAForK: func(k int) driving.QAService {
			return services.NewQAService(env.index, env.generator, prompts, k)
		},
		Indexing:  services.NewIndexingService(extractor, chunker.New(chunker.WithChunkSize(60), chunker.WithOverlap(10)), env.index),
		Research:  services.NewResearchService(extractor, env.generator, prompts),
		Workspace: env.workspace,
		Settings:  services.NewSettingsService(env.config, nil),
		PapersDir: env.papersDir,
	})

	t.Cleanup(func() {
		SetServices(&Services{})
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return env
}

func resetFlags() {
	indexFiles = nil
	indexForce = false
	indexWatch = false
	askK = 0
	askSources = false
	searchLimit = domain.DefaultRetrievalK
	searchJSON = false
	suggestCount = services.DefaultQuestionCount
	exportFormat = "json"
	exportOutput = ""
	importName = ""
	clearYes = false
	verbose = false
	versionShort = false
	mcpPort = 0
	mcpHost = "127.0.0.1"
}

func writePaper(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0600))
	return path
}

// run executes the root command with args and returns combined output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// indexPapers builds the index over the fixture papers.
func indexPapers(t *testing.T, env *testEnv) {
	t.Helper()
	_, err := run(t, "index", env.papersDir)
	require.NoError(t, err)
	resetFlags()
}
