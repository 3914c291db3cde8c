package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
	importName   string
	clearYes     bool
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Manage saved research sessions",
	Long: `Workspaces capture a research session: the papers, suggested questions,
question and answer history and research helper outputs. Save one from the
TUI with ctrl+s.`,
	RunE: runWorkspaceList,
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved workspaces, newest first",
	RunE:  runWorkspaceList,
}

var workspaceShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Show a workspace's history",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceShow,
}

var workspaceDeleteCmd = &cobra.Command{
	Use:   "delete [file]",
	Short: "Delete a workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceDelete,
}

var workspaceClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every workspace",
	RunE:  runWorkspaceClear,
}

var workspaceExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export a workspace as JSON or YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceExport,
}

var workspaceImportCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Import a workspace JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceImport,
}

func init() {
	workspaceClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")
	workspaceExportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format (json or yaml)")
	workspaceExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to this file instead of stdout")
	workspaceImportCmd.Flags().StringVar(&importName, "name", "", "store under this file name")

	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceShowCmd)
	workspaceCmd.AddCommand(workspaceDeleteCmd)
	workspaceCmd.AddCommand(workspaceClearCmd)
	workspaceCmd.AddCommand(workspaceExportCmd)
	workspaceCmd.AddCommand(workspaceImportCmd)
	rootCmd.AddCommand(workspaceCmd)
}

func runWorkspaceList(cmd *cobra.Command, _ []string) error {
	if workspaceService == nil {
		return notConfigured("workspace service")
	}

	infos, err := workspaceService.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		cmd.Println("No workspaces saved.")
		return nil
	}

	for _, info := range infos {
		saved := "unknown"
		if !info.CreatedAt.IsZero() {
			saved = info.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		cmd.Printf("  %-40s %-24s %s\n", info.Filename, info.Name, saved)
	}
	return nil
}

func runWorkspaceShow(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return notConfigured("workspace service")
	}

	ws, err := workspaceService.Load(args[0])
	if err != nil {
		return err
	}

	cmd.Printf("%s (saved %s)\n", ws.Name, ws.CreatedAt.Local().Format("2006-01-02 15:04"))
	if len(ws.Data.UploadedPapers) > 0 {
		cmd.Println()
		cmd.Println("Papers:")
		for _, p := range ws.Data.UploadedPapers {
			cmd.Printf("  - %s\n", p)
		}
	}
	if len(ws.Data.QAHistory) > 0 {
		cmd.Println()
		cmd.Println("History:")
		for i, qa := range ws.Data.QAHistory {
			cmd.Printf("  Q%d: %s\n", i+1, qa.Question)
			cmd.Printf("  A%d: %s\n", i+1, snippet(qa.Answer, 240))
		}
	}
	if len(ws.Data.SuggestedQuestions) > 0 {
		cmd.Println()
		cmd.Println("Suggested questions:")
		for _, q := range ws.Data.SuggestedQuestions {
			cmd.Printf("  - %s\n", q)
		}
	}
	return nil
}

func runWorkspaceDelete(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return notConfigured("workspace service")
	}

	if err := workspaceService.Delete(args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

func runWorkspaceClear(cmd *cobra.Command, _ []string) error {
	if workspaceService == nil {
		return notConfigured("workspace service")
	}
	if !clearYes {
		return errors.New("refusing to delete every workspace without --yes")
	}

	n, err := workspaceService.Clear()
	if err != nil {
		return err
	}
	cmd.Printf("Deleted %d workspaces.\n", n)
	return nil
}

func runWorkspaceExport(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return notConfigured("workspace service")
	}

	data, err := workspaceService.Export(args[0], exportFormat)
	if err != nil {
		return err
	}
	if exportOutput == "" {
		cmd.Print(string(data))
		return nil
	}
	if err := os.WriteFile(exportOutput, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", exportOutput, err)
	}
	cmd.Printf("Exported to %s\n", exportOutput)
	return nil
}

func runWorkspaceImport(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return notConfigured("workspace service")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	name := importName
	if name == "" {
		name = filepath.Base(args[0])
	}
	stored, err := workspaceService.Import(name, data)
	if err != nil {
		return err
	}
	cmd.Printf("Imported as %s\n", stored)
	return nil
}
