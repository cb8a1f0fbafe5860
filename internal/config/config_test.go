package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default("/var/lib/opsintel")

	assert.Equal(t, DefaultEmbeddingModel, cfg.EmbeddingModel)
	assert.Equal(t, 1536, cfg.Dimensions)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, filepath.Join("/var/lib/opsintel", "staging"), cfg.StagingRoot)
	require.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opsintel.toml")
	content := `
embedding_model = "text-embedding-3-large"
dimensions = 3072
batch_size = 50
staging_root = "/srv/staging"
archive_root = "/srv/archive"
watch_interval = "5m"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "text-embedding-3-large", cfg.EmbeddingModel)
	assert.Equal(t, 3072, cfg.Dimensions)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, "/srv/staging", cfg.StagingRoot)
	assert.Equal(t, 5*time.Minute, cfg.WatchInterval)

	// Unset fields keep defaults relative to the config file.
	assert.Equal(t, filepath.Join(dir, "data", "index"), cfg.IndexDir)
	assert.Equal(t, DefaultGenerationModel, cfg.GenerationModel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dimensions", func(c *Config) { c.Dimensions = 0 }},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"zero pages per chunk", func(c *Config) { c.PagesPerChunk = 0 }},
		{"empty staging root", func(c *Config) { c.StagingRoot = "" }},
		{"empty tracking dsn", func(c *Config) { c.TrackingDSN = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
