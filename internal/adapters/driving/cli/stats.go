package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if deps == nil || deps.ArticleStore == nil {
		return errors.New("article store not configured")
	}

	ctx := cmd.Context()

	total, err := deps.ArticleStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting articles: %w", err)
	}
	bySource, err := deps.ArticleStore.CountBySource(ctx)
	if err != nil {
		return fmt.Errorf("counting by source: %w", err)
	}

	cmd.Printf("Articles: %d\n", total)

	sources := make([]string, 0, len(bySource))
	for src := range bySource {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	for _, src := range sources {
		label := src
		if cfg, ok := deps.Config.Sources[src]; ok {
			label = fmt.Sprintf("%s (%s)", src, cfg.Name)
		}
		cmd.Printf("  %-30s %d\n", label, bySource[src])
	}

	if deps.VectorStore == nil {
		return domain.ErrVectorStoreUnavailable
	}
	vectors, err := deps.VectorStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting vectors: %w", err)
	}
	cmd.Printf("Indexed chunks: %d\n", vectors)
	return nil
}
