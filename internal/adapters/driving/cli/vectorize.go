package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driving"
)

var (
	vectorizeReset  bool
	vectorizeDryRun bool
	vectorizeYes    bool
)

var vectorizeCmd = &cobra.Command{
	Use:   "vectorize",
	Short: "Chunk, embed and index the stored articles",
	Long: `Chunks every stored article, estimates the embedding cost, and after
confirmation embeds the chunks and writes them to the vector store.

Use --dry-run to see the chunk and cost figures without calling the
embedding API, and --reset to rebuild the collection from scratch.`,
	RunE: runVectorize,
}

func init() {
	vectorizeCmd.Flags().BoolVar(&vectorizeReset, "reset", false, "empty the collection before indexing")
	vectorizeCmd.Flags().BoolVar(&vectorizeDryRun, "dry-run", false, "estimate only; do not embed or store")
	vectorizeCmd.Flags().BoolVarP(&vectorizeYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(vectorizeCmd)
}

func runVectorize(cmd *cobra.Command, _ []string) error {
	if deps == nil || deps.VectorizeService == nil {
		return fmt.Errorf("%w (is OPENAI_API_KEY set?)", domain.ErrEmbeddingUnavailable)
	}

	// First pass estimates; the prompt shows the cost before any API
	// spend happens.
	estimate, err := deps.VectorizeService.Vectorize(cmd.Context(),
		driving.VectorizeOptions{DryRun: true})
	if err != nil {
		return fmt.Errorf("estimating: %w", err)
	}

	cmd.Printf("Articles:       %d\n", estimate.Articles)
	cmd.Printf("Chunks:         %d\n", estimate.Chunks)
	cmd.Printf("Tokens:         %d\n", estimate.TotalTokens)
	cmd.Printf("Estimated cost: $%.4f\n", estimate.EstimatedCostUSD)

	if vectorizeDryRun || estimate.Chunks == 0 {
		return nil
	}

	if !vectorizeYes && !confirm(cmd) {
		cmd.Println("Aborted.")
		return nil
	}

	report, err := deps.VectorizeService.Vectorize(cmd.Context(), driving.VectorizeOptions{
		Reset: vectorizeReset,
	})
	if err != nil {
		return fmt.Errorf("vectorizing: %w", err)
	}

	cmd.Printf("Stored %d records (%d tokens billed, $%.4f)\n",
		report.Stored, report.Usage.TotalTokens, report.Usage.EstimatedCostUSD)
	return nil
}

func confirm(cmd *cobra.Command) bool {
	cmd.Print("Proceed with embedding? [y/N]: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
