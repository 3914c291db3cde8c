package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/services"
)

var suggestCount int

var compareCmd = &cobra.Command{
	Use:   "compare [paper] [paper]...",
	Short: "Compare the methodology of two or more papers",
	Long: `Extracts the methods section of each paper and asks the language model
for a side-by-side comparison of approaches, data and experimental setup.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCompare,
}

var reviewCmd = &cobra.Command{
	Use:   "review [paper]...",
	Short: "Write a literature review paragraph",
	Long: `Combines the text of the papers and asks the language model for a short
literature review covering common themes, differences and research gaps.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReview,
}

var extractCmd = &cobra.Command{
	Use:   "extract [paper]",
	Short: "List the datasets and metrics a paper uses",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [paper]",
	Short: "Suggest research questions about a paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestCount, "count", "n", services.DefaultQuestionCount, "number of questions")
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(suggestCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if researchService == nil {
		return notConfigured("research service")
	}

	out, err := researchService.CompareMethods(cmd.Context(), documentsFromPaths(args))
	if err != nil {
		return err
	}
	cmd.Println(out)
	return nil
}

func runReview(cmd *cobra.Command, args []string) error {
	if researchService == nil {
		return notConfigured("research service")
	}

	text, err := researchService.CombinedText(cmd.Context(), documentsFromPaths(args))
	if err != nil {
		return err
	}
	out, err := researchService.LiteratureReview(cmd.Context(), text)
	if err != nil {
		return err
	}
	cmd.Println(out)
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	if researchService == nil {
		return notConfigured("research service")
	}

	text, err := researchService.PaperText(cmd.Context(), domain.DocumentFromPath(args[0]))
	if err != nil {
		return err
	}
	out, err := researchService.ExtractDatasetsMetrics(cmd.Context(), text)
	if err != nil {
		return err
	}
	cmd.Println(out)
	return nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if researchService == nil {
		return notConfigured("research service")
	}

	text, err := researchService.PaperText(cmd.Context(), domain.DocumentFromPath(args[0]))
	if err != nil {
		return err
	}
	questions, err := researchService.SuggestQuestions(cmd.Context(), text, suggestCount)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		cmd.Println("Not enough text to suggest questions.")
		return nil
	}
	for i, q := range questions {
		cmd.Printf("%d. %s\n", i+1, q)
	}
	return nil
}

func documentsFromPaths(paths []string) []domain.Document {
	docs := make([]domain.Document, len(paths))
	for i, path := range paths {
		docs[i] = domain.DocumentFromPath(path)
	}
	return docs
}
