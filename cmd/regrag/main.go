// Command regrag is the regulatory-news knowledge base CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/regwatch-labs/regrag-cli/internal/adapters/driven/embedding/openai"
	"github.com/regwatch-labs/regrag-cli/internal/adapters/driven/vectorstore/chroma"
	"github.com/regwatch-labs/regrag-cli/internal/adapters/driven/vectorstore/memory"
	llmopenai "github.com/regwatch-labs/regrag-cli/internal/adapters/driven/llm/openai"
	articlestore "github.com/regwatch-labs/regrag-cli/internal/adapters/driven/storage/sqlite"
	vectorsqlite "github.com/regwatch-labs/regrag-cli/internal/adapters/driven/vectorstore/sqlite"
	"github.com/regwatch-labs/regrag-cli/internal/adapters/driving/cli"
	"github.com/regwatch-labs/regrag-cli/internal/chunker"
	"github.com/regwatch-labs/regrag-cli/internal/config"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driven"
	"github.com/regwatch-labs/regrag-cli/internal/core/services"
	"github.com/regwatch-labs/regrag-cli/internal/logger"
	"github.com/regwatch-labs/regrag-cli/internal/tokenizer"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cli.SetBootstrap(buildDeps)

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openVectorStore picks the configured vector store backend.
func openVectorStore(cfg config.Config, dataDir string) (driven.VectorStore, error) {
	switch cfg.Store.Backend {
	case "", "sqlite":
		return vectorsqlite.NewStore(dataDir, cfg.Store.Collection, cfg.OpenAI.Dimensions)
	case "memory":
		return memory.NewStore(cfg.OpenAI.Dimensions), nil
	case "chroma":
		return chroma.NewStore(context.Background(), chroma.Config{
			BaseURL:    cfg.Store.ChromaURL,
			Collection: cfg.Store.Collection,
			Dimensions: cfg.OpenAI.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// buildDeps wires the adapters and services from configuration. The
// OpenAI-backed services are left nil when no API key is present so
// that offline commands (ingest, stats) still work.
func buildDeps(configPath string) (*cli.Deps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}

	articles, err := articlestore.NewArticleStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening article store: %w", err)
	}

	vectors, err := openVectorStore(cfg, dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}

	deps := &cli.Deps{
		Config:       cfg,
		ArticleStore: articles,
		VectorStore:  vectors,
	}

	if cfg.OpenAI.APIKey == "" {
		logger.Debug("%s not set; embedding and generation disabled", config.EnvAPIKey)
		return deps, nil
	}

	counter, err := tokenizer.NewCounter(cfg.OpenAI.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer: %w", err)
	}

	embedder, err := openai.NewEmbeddingService(openai.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.Dimensions,
		BatchDelay: time.Duration(cfg.OpenAI.EmbedDelayMS) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding service: %w", err)
	}

	llm, err := llmopenai.NewLLMService(llmopenai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.LLMModel,
	})
	if err != nil {
		return nil, fmt.Errorf("creating LLM service: %w", err)
	}

	splitter := chunker.New(counter,
		chunker.WithChunkSize(cfg.Chunking.ChunkSize),
		chunker.WithOverlap(cfg.Chunking.ChunkOverlap),
		chunker.WithMinChunkSize(cfg.Chunking.MinChunkSize),
	)

	deps.EmbeddingService = embedder
	deps.VectorizeService = services.NewVectorizeService(articles, splitter, embedder, vectors)
	deps.AskService = services.NewAskService(embedder, vectors, llm,
		services.WithMaxOutputTokens(cfg.Ask.MaxOutputTokens))

	return deps, nil
}
