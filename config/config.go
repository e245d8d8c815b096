package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the document QA tool.
type Config struct {
	Corpus     CorpusConfig     `yaml:"corpus"`
	Clean      CleanConfig      `yaml:"clean"`
	Split      SplitConfig      `yaml:"split"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Store      StoreConfig      `yaml:"store"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Generation GenerationConfig `yaml:"generation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CorpusConfig controls source discovery for indexing.
type CorpusConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// CleanConfig controls document cleaning. Cleaning runs before splitting;
// chunk offsets are computed against the cleaned text.
type CleanConfig struct {
	RemoveEmptyLines    bool `yaml:"remove_empty_lines"`
	NormalizeWhitespace bool `yaml:"normalize_whitespace"`
	CollapseRepeats     bool `yaml:"collapse_repeats"`
}

// SplitConfig controls chunking. Overlap must stay below ChunkSize.
type SplitConfig struct {
	Unit      string `yaml:"unit"`       // "word" or "sentence"
	ChunkSize int    `yaml:"chunk_size"` // units per chunk, > 0
	Overlap   int    `yaml:"overlap"`    // units shared with the previous chunk
}

// EmbeddingConfig holds the embedding provider boundary. The same config
// drives both the document embedder and the query embedder, so model and
// normalization always agree between indexing and querying. The prefixes
// are per side: e5-style models want "query: " on questions and
// "passage: " on indexed text, bge models want neither.
type EmbeddingConfig struct {
	BaseURL        string `yaml:"base_url"`    // OpenAI-compatible endpoint
	APIKeyEnv      string `yaml:"api_key_env"` // env var holding the provider key
	Model          string `yaml:"model"`
	Dimension      int    `yaml:"dimension"`
	BatchSize      int    `yaml:"batch_size"`
	Normalize      bool   `yaml:"normalize"`
	QueryPrefix    string `yaml:"query_prefix"`    // prepended to questions before embedding
	DocumentPrefix string `yaml:"document_prefix"` // prepended to chunk texts before embedding
	Device         string `yaml:"device"`          // execution hint passed to the provider: cpu|accelerator
	TimeoutS       int    `yaml:"timeout_seconds"`
}

// StoreConfig holds document store settings. Recreate is explicit: true
// wipes and rebuilds the index on each indexing run, false appends.
type StoreConfig struct {
	Backend    string `yaml:"backend"` // "bolt" or "chromem"
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	Metric     string `yaml:"metric"` // "cosine" or "dot"
	Recreate   bool   `yaml:"recreate"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
}

// GenerationConfig holds the generation provider boundary. The credential is
// deliberately absent: it is supplied per call, never read from config or
// environment.
type GenerationConfig struct {
	Provider  string `yaml:"provider"` // "openai" or "anthropic"
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	TimeoutS  int    `yaml:"timeout_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Includes: []string{"**/*.txt", "**/*.md", "**/*.pdf"},
			Excludes: []string{"**/.docqa/**", "**/node_modules/**", "**/.git/**"},
		},
		Clean: CleanConfig{
			RemoveEmptyLines:    true,
			NormalizeWhitespace: true,
			CollapseRepeats:     false,
		},
		Split: SplitConfig{
			Unit:      "word",
			ChunkSize: 200,
			Overlap:   20,
		},
		Embedding: EmbeddingConfig{
			BaseURL:        "http://localhost:11434/v1",
			APIKeyEnv:      "EMBEDDING_API_KEY",
			Model:          "bge-small-en-v1.5",
			Dimension:      384,
			BatchSize:      32,
			Normalize:      true,
			QueryPrefix:    "",
			DocumentPrefix: "",
			Device:         "cpu",
			TimeoutS:       60,
		},
		Store: StoreConfig{
			Backend:    "bolt",
			Collection: "documents",
			Metric:     "cosine",
			Recreate:   false,
		},
		Retrieve: RetrieveConfig{
			TopK: 5,
		},
		Generation: GenerationConfig{
			Provider:  "openai",
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4o-mini",
			MaxTokens: 1024,
			TimeoutS:  60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks field ranges that cannot be expressed in the YAML schema.
func (c *Config) Validate() error {
	if c.Split.Unit != "word" && c.Split.Unit != "sentence" {
		return fmt.Errorf("split.unit must be word or sentence, got %q", c.Split.Unit)
	}
	if c.Split.ChunkSize <= 0 {
		return fmt.Errorf("split.chunk_size must be > 0, got %d", c.Split.ChunkSize)
	}
	if c.Split.Overlap < 0 || c.Split.Overlap >= c.Split.ChunkSize {
		return fmt.Errorf("split.overlap must satisfy 0 <= overlap < chunk_size, got %d", c.Split.Overlap)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be > 0, got %d", c.Embedding.Dimension)
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("embedding.batch_size must be > 0, got %d", c.Embedding.BatchSize)
	}
	if c.Store.Backend != "bolt" && c.Store.Backend != "chromem" {
		return fmt.Errorf("store.backend must be bolt or chromem, got %q", c.Store.Backend)
	}
	if c.Store.Metric != "cosine" && c.Store.Metric != "dot" {
		return fmt.Errorf("store.metric must be cosine or dot, got %q", c.Store.Metric)
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("retrieve.top_k must be > 0, got %d", c.Retrieve.TopK)
	}
	if c.Generation.Provider != "openai" && c.Generation.Provider != "anthropic" {
		return fmt.Errorf("generation.provider must be openai or anthropic, got %q", c.Generation.Provider)
	}
	return nil
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docqa.yaml,
// then .docqa/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docqa.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docqa", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDBPath returns the path to the index database for a corpus root.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, ".docqa", "index.db")
}

// EnsureDataDir ensures the .docqa directory exists under the corpus root.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".docqa"), 0755)
}
