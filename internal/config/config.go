// Package config loads the opsintel configuration from a TOML file.
// All components receive their settings from the explicit Config
// struct at construction; nothing reads configuration ad hoc.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultEmbeddingModel  = "text-embedding-3-small"
	DefaultDimensions      = 1536
	DefaultBatchSize       = 100
	DefaultPagesPerChunk   = 1
	DefaultRetrievalK      = 15
	DefaultGenerationModel = "gpt-4o-mini"
	DefaultWatchInterval   = 15 * time.Minute
)

// Config holds all pipeline settings.
type Config struct {
	// EmbeddingModel is the embedding model name.
	EmbeddingModel string `toml:"embedding_model"`

	// Dimensions is the embedding vector size. Must match the model
	// and the vector index.
	Dimensions int `toml:"dimensions"`

	// BatchSize is the maximum number of texts per embedding call.
	BatchSize int `toml:"batch_size"`

	// PagesPerChunk is the number of PDF pages combined per chunk.
	PagesPerChunk int `toml:"pages_per_chunk"`

	// StagingRoot holds incoming artifacts, one subdirectory per
	// document type.
	StagingRoot string `toml:"staging_root"`

	// ArchiveRoot mirrors the staging layout for completed artifacts.
	ArchiveRoot string `toml:"archive_root"`

	// IndexDir is where the vector index artifacts live.
	IndexDir string `toml:"index_dir"`

	// TrackingDSN is the connection string of the tracking store.
	TrackingDSN string `toml:"tracking_dsn"`

	// RetrievalK is the default number of chunks to retrieve.
	RetrievalK int `toml:"retrieval_k"`

	// GenerationModel is the model used for structured answers.
	GenerationModel string `toml:"generation_model"`

	// WatchInterval is the fallback run interval in watch mode.
	WatchInterval time.Duration `toml:"watch_interval"`
}

// Default returns a configuration rooted at dataDir.
func Default(dataDir string) Config {
	return Config{
		EmbeddingModel:  DefaultEmbeddingModel,
		Dimensions:      DefaultDimensions,
		BatchSize:       DefaultBatchSize,
		PagesPerChunk:   DefaultPagesPerChunk,
		StagingRoot:     filepath.Join(dataDir, "staging"),
		ArchiveRoot:     filepath.Join(dataDir, "archive"),
		IndexDir:        filepath.Join(dataDir, "index"),
		TrackingDSN:     filepath.Join(dataDir, "tracking.db"),
		RetrievalK:      DefaultRetrievalK,
		GenerationModel: DefaultGenerationModel,
		WatchInterval:   DefaultWatchInterval,
	}
}

// Load reads a TOML config file. Fields left unset in the file keep
// their defaults relative to the file's directory. A missing file is
// an error; use Default for fully in-code configuration.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default(filepath.Join(filepath.Dir(path), "data"))
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values a run cannot proceed without.
func (c Config) Validate() error {
	if c.Dimensions <= 0 {
		return fmt.Errorf("config: dimensions must be positive, got %d", c.Dimensions)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: batch_size must be positive, got %d", c.BatchSize)
	}
	if c.PagesPerChunk <= 0 {
		return fmt.Errorf("config: pages_per_chunk must be positive, got %d", c.PagesPerChunk)
	}
	if c.StagingRoot == "" || c.ArchiveRoot == "" {
		return fmt.Errorf("config: staging_root and archive_root are required")
	}
	if c.TrackingDSN == "" {
		return fmt.Errorf("config: tracking_dsn is required")
	}
	return nil
}
