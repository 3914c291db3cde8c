package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed passages",
	Long: `Finds the passages most similar to the query by embedding similarity.
The language model is not called, so no API key is needed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultRetrievalK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// searchResult is the JSON shape of one hit.
type searchResult struct {
	Source   string  `json:"source"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return notConfigured("search service")
	}

	hits, err := qaService.Search(cmd.Context(), strings.Join(args, " "), searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, hits)
	}

	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	printHits(cmd, "Results:", hits)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, hits []domain.RetrievalHit) error {
	results := make([]searchResult, len(hits))
	for i, hit := range hits {
		results[i] = searchResult{
			Source:   hit.Passage.Source,
			Position: hit.Passage.Position,
			Score:    hit.Score,
			Text:     hit.Passage.Text,
		}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
