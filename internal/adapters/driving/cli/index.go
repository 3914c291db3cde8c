package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

var (
	indexFiles []string
	indexForce bool
	indexWatch bool
)

var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Index research papers",
	Long: `Extracts the text of every PDF, text and Markdown file directly inside
the directory, splits it into overlapping passages and replaces the index.

The rebuild is skipped when the same documents are already indexed,
unless --force is given. With --watch the directory is monitored and
re-indexed whenever papers are added, removed or rewritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what is indexed",
	RunE:  runStatus,
}

func init() {
	indexCmd.Flags().StringSliceVarP(&indexFiles, "file", "f", nil, "index these files instead of a directory")
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "rebuild even if the documents are unchanged")
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "keep watching the directory for changes")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statusCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexingService == nil {
		return notConfigured("indexing service")
	}
	if indexWatch && len(indexFiles) > 0 {
		return errors.New("--watch needs a directory, not --file")
	}

	dir := papersDir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		dir = "."
	}

	docs, err := indexDocuments(dir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w: no supported documents in %s", domain.ErrNoPassages, dir)
	}

	ctx := cmd.Context()
	needs := true
	if !indexForce {
		needs, err = indexingService.NeedsReindex(ctx, docs)
		if err != nil {
			return err
		}
	}

	if needs {
		cmd.Printf("Indexing %d documents...\n", len(docs))
		report, err := indexingService.Reindex(ctx, docs)
		printReport(cmd, report)
		if err != nil {
			return err
		}
	} else {
		cmd.Printf("Index is up to date (%d documents). Use --force to rebuild.\n", len(docs))
	}

	if !indexWatch {
		return nil
	}
	if watcherFactory == nil {
		return notConfigured("watcher")
	}

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)...\n", dir)
	watcher := watcherFactory(dir, func(report *domain.IndexReport, err error) {
		printReport(cmd, report)
		if err != nil {
			cmd.PrintErrln(FormatError(err))
		}
	})
	return watcher.Run(ctx)
}

func indexDocuments(dir string) ([]domain.Document, error) {
	if len(indexFiles) == 0 {
		return indexingService.Documents(dir)
	}
	docs := make([]domain.Document, 0, len(indexFiles))
	for _, path := range indexFiles {
		docs = append(docs, domain.DocumentFromPath(path))
	}
	return docs, nil
}

// printReport summarises a reindex. A nil report prints nothing.
func printReport(cmd *cobra.Command, report *domain.IndexReport) {
	if report == nil {
		return
	}
	for _, f := range report.Failed {
		cmd.Printf("  skipped %s: %v\n", f.Name, f.Err)
	}
	for _, name := range report.Empty {
		cmd.Printf("  no text in %s\n", name)
	}
	if len(report.Indexed) > 0 {
		cmd.Printf("Indexed %d documents into %d passages.\n", len(report.Indexed), report.Status.Passages)
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if indexingService == nil {
		return notConfigured("indexing service")
	}

	status, err := indexingService.Status(cmd.Context())
	if errors.Is(err, domain.ErrIndexNotFound) {
		cmd.Println(domain.Guidance(err))
		return nil
	}
	if err != nil {
		return err
	}

	cmd.Println("Index")
	cmd.Println("=====")
	cmd.Printf("  Generation: %s\n", status.Generation)
	cmd.Printf("  Built:      %s\n", status.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	cmd.Printf("  Embedding:  %s (%d dimensions)\n", status.Model, status.Dimensions)
	cmd.Printf("  Passages:   %d\n", status.Passages)
	cmd.Printf("  Documents:  %d\n", len(status.Documents))
	for _, name := range status.Documents {
		cmd.Printf("    - %s\n", name)
	}
	return nil
}
