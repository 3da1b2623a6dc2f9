package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/logger"
	"github.com/regwatch-labs/regrag-cli/internal/normalise"
)

var ingestSource string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Load scraped article dumps into the article store",
	Long: `Loads one or more JSON dump files produced by the scrapers into the
local article store. Each file holds an array of articles:

  [{"source": "esma", "title": "...", "url": "...",
    "date": "2025-03-12", "content": "...", "language": "en"}]

Articles whose URL is already stored are skipped. Articles with empty
content are rejected and counted separately.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "override the source code for all articles in the files")
	rootCmd.AddCommand(ingestCmd)
}

// dumpArticle is the scraper dump format.
type dumpArticle struct {
	Source   string `json:"source"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Date     string `json:"date"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if deps == nil || deps.ArticleStore == nil {
		return errors.New("article store not configured")
	}

	var inserted, skipped, empty int
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		var dump []dumpArticle
		if err := json.Unmarshal(data, &dump); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}

		logger.Info("ingesting %d articles from %s", len(dump), path)
		for _, d := range dump {
			article := domain.Article{
				Source:        d.Source,
				Title:         d.Title,
				URL:           d.URL,
				DatePublished: d.Date,
				Content:       normalise.Clean(d.Content),
				Language:      d.Language,
			}
			if ingestSource != "" {
				article.Source = ingestSource
			}

			ok, err := deps.ArticleStore.Save(cmd.Context(), article)
			switch {
			case errors.Is(err, domain.ErrEmptyContent):
				logger.Warn("empty content: %s", article.URL)
				empty++
			case err != nil:
				return fmt.Errorf("saving %s: %w", article.URL, err)
			case ok:
				inserted++
			default:
				skipped++
			}
		}
	}

	cmd.Printf("Ingested %d articles (%d already stored, %d with empty content)\n",
		inserted, skipped, empty)
	return nil
}
