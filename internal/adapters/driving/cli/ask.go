package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
)

var (
	askNResults int
	askSource   string
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question grounded on the indexed articles",
	Long: `Embeds the question, retrieves the most relevant article chunks and
generates an answer grounded exclusively on them. The answer cites the
documents it used; when nothing relevant is indexed, it says so
instead of guessing.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askNResults, "limit", "n", 0, "number of records retrieved (default from config)")
	askCmd.Flags().StringVar(&askSource, "source", "", "restrict to one regulator source code")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full answer structure as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if deps == nil || deps.AskService == nil {
		return fmt.Errorf("%w (is OPENAI_API_KEY set?)", domain.ErrLLMUnavailable)
	}

	opts := domain.AskOptions{
		NResults:     askNResults,
		SourceFilter: askSource,
	}
	if opts.NResults == 0 && deps != nil {
		opts.NResults = deps.Config.Ask.NResults
	}

	answer, err := deps.AskService.Ask(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, answer)
	}

	cmd.Println(answer.Answer)
	if answer.Grounded() {
		cmd.Println()
		cmd.Printf("Sources (%d):\n", answer.SourcesUsed)
		for i, src := range answer.SourcesInfo {
			cmd.Printf("  [%d] %s - %s (score %.1f)\n", i+1, src.Source, src.Title, src.Score)
			cmd.Printf("      %s\n", src.URL)
		}
		cmd.Printf("\nModel: %s\n", answer.Model)
	}
	return nil
}
