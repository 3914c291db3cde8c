// Package cli provides the paperpilot command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperpilot/internal/adapters/driving/mcp"
	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
	"github.com/custodia-labs/paperpilot/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var verbose bool

// Services wired by the composition root.
var (
	qaService        driving.QAService
	qaForK           func(k int) driving.QAService
	indexingService  driving.IndexingService
	researchService  driving.ResearchService
	workspaceService driving.WorkspaceService
	settingsService  driving.SettingsService
	watcherFactory   driving.WatcherFactory
	papersDir        string
)

// errNotConfigured is returned by commands whose service was not wired.
var errNotConfigured = errors.New("service not configured")

// Services holds the driving ports used by the commands.
type Services struct {
	// QA answers questions with the configured retrieval depth.
	QA driving.QAService

	// QAForK builds a QA service retrieving k passages. Optional.
	QAForK func(k int) driving.QAService

	Indexing  driving.IndexingService
	Research  driving.ResearchService
	Workspace driving.WorkspaceService
	Settings  driving.SettingsService

	// Watcher creates directory watchers for 'index --watch'. Optional.
	Watcher driving.WatcherFactory

	// PapersDir is indexed when 'index' is given no directory.
	PapersDir string
}

var rootCmd = &cobra.Command{
	Use:   "paperpilot",
	Short: "Ask grounded questions about your research papers",
	Long: `PaperPilot indexes a folder of research papers and answers questions
using only passages retrieved from them, citing the source of each passage.

Get started:
  paperpilot index ~/papers
  paperpilot ask "Which dataset was used for training?"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress and timings")
}

// SetServices injects the services used by every command.
func SetServices(s *Services) {
	qaService = s.QA
	qaForK = s.QAForK
	indexingService = s.Indexing
	researchService = s.Research
	workspaceService = s.Workspace
	settingsService = s.Settings
	watcherFactory = s.Watcher
	papersDir = s.PapersDir
}

// SetVersion sets the version printed by 'paperpilot version' and reported
// by the MCP server.
func SetVersion(v string) {
	if v != "" {
		version = v
		mcp.Version = v
	}
}

// Execute runs the root command and prints any error with its guidance.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		rootCmd.PrintErrln(FormatError(err))
	}
	return err
}

// FormatError renders err followed by the corrective action, if one is known.
func FormatError(err error) string {
	msg := "Error: " + err.Error()
	if guidance := domain.Guidance(err); guidance != "" {
		msg += "\n" + guidance
	}
	return msg
}

func notConfigured(name string) error {
	return fmt.Errorf("%s %w", name, errNotConfigured)
}
