// Package config loads the regrag configuration from a TOML file,
// layered over built-in defaults. The OpenAI API key is read from the
// environment only and never written to disk.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// EnvAPIKey is the environment variable holding the OpenAI API key.
const EnvAPIKey = "OPENAI_API_KEY"

// Config is the full application configuration.
type Config struct {
	OpenAI   OpenAIConfig            `toml:"openai"`
	Chunking ChunkingConfig          `toml:"chunking"`
	Store    StoreConfig             `toml:"store"`
	Ask      AskConfig               `toml:"ask"`
	Sources  map[string]SourceConfig `toml:"sources"`
}

// OpenAIConfig configures the embedding and generation clients.
type OpenAIConfig struct {
	// APIKey is resolved from the environment, never from the file.
	APIKey string `toml:"-"`

	// BaseURL overrides the API endpoint (Azure, local inference).
	BaseURL string `toml:"base_url"`

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string `toml:"embedding_model"`

	// Dimensions is the embedding vector size for EmbeddingModel.
	Dimensions int `toml:"dimensions"`

	// LLMModel is the answer-generation model name.
	LLMModel string `toml:"llm_model"`

	// EmbedDelayMS is the fixed delay between batch embedding calls,
	// in milliseconds.
	EmbedDelayMS int `toml:"embed_delay_ms"`
}

// ChunkingConfig configures text segmentation, in tokens.
type ChunkingConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
	MinChunkSize int `toml:"min_chunk_size"`
}

// StoreConfig configures persistence.
type StoreConfig struct {
	// DataDir holds the article and vector databases.
	// Empty means ~/.regrag/data.
	DataDir string `toml:"data_dir"`

	// Collection is the vector collection name.
	Collection string `toml:"collection"`

	// Backend selects the vector store: "sqlite" (default),
	// "memory" or "chroma".
	Backend string `toml:"backend"`

	// ChromaURL is the ChromaDB server URL when Backend is "chroma".
	ChromaURL string `toml:"chroma_url"`
}

// AskConfig configures retrieval and answer generation.
type AskConfig struct {
	// NResults is the number of records requested from the store.
	NResults int `toml:"n_results"`

	// MaxOutputTokens bounds the generated answer length.
	MaxOutputTokens int `toml:"max_output_tokens"`
}

// SourceConfig describes one regulator feed.
type SourceConfig struct {
	Name     string `toml:"name"`
	Language string `toml:"language"`
	Enabled  bool   `toml:"enabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OpenAI: OpenAIConfig{
			APIKey:         os.Getenv(EnvAPIKey),
			EmbeddingModel: "text-embedding-3-small",
			Dimensions:     1536,
			LLMModel:       "gpt-5-nano",
			EmbedDelayMS:   100,
		},
		Chunking: ChunkingConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			MinChunkSize: 100,
		},
		Store: StoreConfig{
			Collection: "regulatory_articles",
			Backend:    "sqlite",
		},
		Ask: AskConfig{
			NResults:        5,
			MaxOutputTokens: 1000,
		},
		Sources: map[string]SourceConfig{
			"afg":   {Name: "AFG (France)", Language: "fr", Enabled: true},
			"afm":   {Name: "AFM (Netherlands)", Language: "en", Enabled: true},
			"alfi":  {Name: "ALFI (Luxembourg)", Language: "en", Enabled: true},
			"amf":   {Name: "AMF (France)", Language: "fr", Enabled: true},
			"cbi":   {Name: "CBI (Ireland)", Language: "en", Enabled: true},
			"cssf":  {Name: "CSSF (Luxembourg)", Language: "fr", Enabled: true},
			"esma":  {Name: "ESMA (Europe)", Language: "en", Enabled: true},
			"finma": {Name: "FINMA (Switzerland)", Language: "en", Enabled: true},
		},
	}
}

// Load reads the configuration file at path, layered over defaults.
// A missing file yields the defaults. If path is empty, the default
// location ~/.regrag/config.toml is used.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("config: resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".regrag", "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// The file must never carry the key; re-resolve from environment.
	cfg.OpenAI.APIKey = os.Getenv(EnvAPIKey)

	return cfg, nil
}

// DataDir resolves the data directory, creating it if necessary.
func (c *Config) DataDir() (string, error) {
	dir := c.Store.DataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".regrag", "data")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("config: create data directory: %w", err)
	}
	return dir, nil
}
