package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
)

var (
	askK       int
	askSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed papers",
	Long: `Retrieves the passages most similar to the question and asks the
language model to answer from them alone, citing each source file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "top-k", "k", 0, "number of passages to retrieve (default from config)")
	askCmd.Flags().BoolVarP(&askSources, "sources", "s", false, "print the passages given to the model")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	qa := qaFor(askK)
	if qa == nil {
		return notConfigured("question answering service")
	}

	answer, err := qa.AnswerWithSources(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	cmd.Println(answer.Text)
	if askSources {
		cmd.Println()
		printHits(cmd, "Sources:", answer.Sources)
	}
	return nil
}

// qaFor returns a QA service retrieving k passages, or the default one
// when k is not positive or no factory is wired.
func qaFor(k int) driving.QAService {
	if k > 0 && qaForK != nil {
		return qaForK(k)
	}
	return qaService
}

func printHits(cmd *cobra.Command, title string, hits []domain.RetrievalHit) {
	cmd.Println(title)
	cmd.Println()
	for i, hit := range hits {
		// Format: [N] source #position (score)
		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, hit.Passage.Source, hit.Passage.Position, hit.Score)
		cmd.Printf("      %s\n", snippet(hit.Passage.Text, 160))
		cmd.Println()
	}
}

// snippet collapses whitespace and shortens text to at most limit runes.
func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
