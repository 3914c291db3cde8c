// Command paperpilot indexes research papers and answers questions about them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/paperpilot/internal/adapters/driven/ai"
	"github.com/custodia-labs/paperpilot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/paperpilot/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/paperpilot/internal/adapters/driving/cli"
	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
	"github.com/custodia-labs/paperpilot/internal/core/services"
	"github.com/custodia-labs/paperpilot/internal/logger"
	"github.com/custodia-labs/paperpilot/internal/normalisers"
	"github.com/custodia-labs/paperpilot/internal/normalisers/pdf"
	"github.com/custodia-labs/paperpilot/internal/normalisers/plaintext"
	"github.com/custodia-labs/paperpilot/internal/postprocessors/chunker"
)

// version is set at build time via ldflags.
var version = "dev"

// papersDirEnv names the directory 'paperpilot index' uses when given none.
const papersDirEnv = "PAPERPILOT_PAPERS_DIR"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup, err := wire(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli.SetVersion(version)
	err = cli.Execute(ctx)
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}

// wire builds every adapter and service and injects them into the CLI.
// The returned function releases the model clients and the index.
func wire(ctx context.Context) (func(), error) {
	// A missing .env file is normal.
	_ = godotenv.Load()

	configDir, err := file.DefaultConfigDir()
	if err != nil {
		return nil, err
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	dataDir := settings.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}

	workspaces, err := file.NewWorkspaceStore(filepath.Join(dataDir, "workspaces"))
	if err != nil {
		return nil, err
	}
	workspaceService := services.NewWorkspaceService(workspaces)

	models, err := ai.Init(ctx, *settings)
	if err != nil {
		// Keep 'config' and 'workspace' usable so the provider can be fixed.
		logger.Error("%v", err)
		cli.SetServices(&cli.Services{Workspace: workspaceService, Settings: settingsService})
		return func() {}, nil
	}
	for _, w := range models.Warnings {
		logger.Warn("%s", w)
	}

	index, err := sqlite.NewIndexStore(dataDir, models.EmbeddingService)
	if err != nil {
		models.Close()
		return nil, fmt.Errorf("open index: %w", err)
	}
	cleanup := func() {
		_ = index.Close()
		models.Close()
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	extractor := normalisers.NewChain(pdf.New(settings.PDFCommand), plaintext.New())
	splitter := chunker.New(
		chunker.WithChunkSize(settings.Chunker.Size),
		chunker.WithOverlap(settings.Chunker.Overlap),
	)

	indexing := services.NewIndexingService(extractor, splitter, index)
	newQA := func(k int) driving.QAService {
		return services.NewQAService(index, models.Generator, prompts, k)
	}

	cli.SetServices(&cli.Services{
		QA:        newQA(settings.RetrievalK),
		QAForK:    newQA,
		Indexing:  indexing,
		Research:  services.NewResearchService(extractor, models.Generator, prompts),
		Workspace: workspaceService,
		Settings:  settingsService,
		Watcher: func(dir string, onResult func(*domain.IndexReport, error)) driving.DocumentWatcher {
			return services.NewWatcher(indexing, dir, 0, onResult)
		},
		PapersDir: os.Getenv(papersDirEnv),
	})
	return cleanup, nil
}
