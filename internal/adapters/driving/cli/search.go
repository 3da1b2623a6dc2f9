package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/core/services"
)

var (
	searchLimit  int
	searchSource string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed article chunks",
	Long: `Embeds the query and returns the nearest indexed chunks with their
relevance scores, without generating an answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", services.DefaultNResults, "maximum number of results")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "restrict to one regulator source code")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if deps == nil || deps.AskService == nil {
		return fmt.Errorf("%w (is OPENAI_API_KEY set?)", domain.ErrEmbeddingUnavailable)
	}

	hits, err := deps.AskService.Search(cmd.Context(), args[0], searchLimit, searchSource)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, hits)
	}
	return outputHitsTable(cmd, hits)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputHitsTable(cmd *cobra.Command, hits []domain.VectorHit) error {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, hit := range hits {
		cmd.Printf("  [%d] %s (score %.1f)\n", i+1, hit.Metadata.Title, services.Score(hit.Distance))
		cmd.Printf("      Source: %s", hit.Metadata.Source)
		if hit.Metadata.Date != "" {
			cmd.Printf("  Date: %s", hit.Metadata.Date)
		}
		cmd.Println()
		cmd.Printf("      %s\n", hit.Metadata.URL)
		cmd.Println()
	}
	return nil
}
