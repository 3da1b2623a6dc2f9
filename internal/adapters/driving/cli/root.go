// Package cli implements the regrag command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/regwatch-labs/regrag-cli/internal/config"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driven"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driving"
	"github.com/regwatch-labs/regrag-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Deps carries the wired services the commands run against. Services
// that could not be constructed (e.g. no API key in the environment)
// are nil and the commands needing them fail with a clear error.
type Deps struct {
	Config           config.Config
	ArticleStore     driven.ArticleStore
	VectorStore      driven.VectorStore
	EmbeddingService driven.EmbeddingService
	AskService       driving.AskService
	VectorizeService driving.VectorizeService
}

// Close releases every wired resource.
func (d *Deps) Close() {
	if d.ArticleStore != nil {
		d.ArticleStore.Close()
	}
	if d.VectorStore != nil {
		d.VectorStore.Close()
	}
	if d.EmbeddingService != nil {
		d.EmbeddingService.Close()
	}
}

// Bootstrap builds the dependency set once flags are parsed. Set by
// the entrypoint; tests inject deps directly with SetDeps.
type Bootstrap func(configPath string) (*Deps, error)

var (
	bootstrap Bootstrap
	deps      *Deps
)

// SetBootstrap registers the dependency constructor.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetDeps sets the dependencies directly, bypassing bootstrap.
func SetDeps(d *Deps) {
	deps = d
}

var (
	verboseFlag bool
	configPath  string
)

var rootCmd = &cobra.Command{
	Use:   "regrag",
	Short: "Regulatory-news retrieval and question answering",
	Long: `regrag maintains a local knowledge base of regulatory news articles
(ESMA, AMF, CSSF, FINMA and others), embeds them into a vector store
and answers questions grounded on the retrieved articles.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		if deps == nil && bootstrap != nil {
			d, err := bootstrap(configPath)
			if err != nil {
				return fmt.Errorf("initialising services: %w", err)
			}
			deps = d
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.regrag/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if deps != nil {
			deps.Close()
		}
	}()
	return rootCmd.Execute()
}
