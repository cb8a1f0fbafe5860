package cli

import (
	"fmt"
	"os"

	archivefs "github.com/opsintel-labs/opsintel/internal/adapters/driven/archive/fs"
	"github.com/opsintel-labs/opsintel/internal/adapters/driven/embedding/limit"
	embopenai "github.com/opsintel-labs/opsintel/internal/adapters/driven/embedding/openai"
	"github.com/opsintel-labs/opsintel/internal/adapters/driven/index/flat"
	llmopenai "github.com/opsintel-labs/opsintel/internal/adapters/driven/llm/openai"
	"github.com/opsintel-labs/opsintel/internal/adapters/driven/storage/sqlite"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
	"github.com/opsintel-labs/opsintel/internal/core/services"
	"github.com/opsintel-labs/opsintel/internal/loaders"
)

// apiKeyEnv is where the OpenAI key is read from; godotenv loads it
// from a local .env when present.
const apiKeyEnv = "OPENAI_API_KEY"

func openTracker() (*sqlite.Store, error) {
	return sqlite.NewStore(cfg.TrackingDSN)
}

func openIndex() (*flat.Index, error) {
	return flat.Open(cfg.IndexDir, cfg.Dimensions)
}

func newEmbedder() (driven.EmbeddingService, error) {
	svc, err := embopenai.NewEmbeddingService(embopenai.Config{
		APIKey:     os.Getenv(apiKeyEnv),
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding service (set %s): %w", apiKeyEnv, err)
	}
	return limit.Wrap(svc, 0, 0), nil
}

func newGenerator() (driven.Generator, error) {
	gen, err := llmopenai.NewGenerator(llmopenai.Config{
		APIKey: os.Getenv(apiKeyEnv),
		Model:  cfg.GenerationModel,
	})
	if err != nil {
		return nil, fmt.Errorf("creating generator (set %s): %w", apiKeyEnv, err)
	}
	return gen, nil
}

func newPipeline(tracker *sqlite.Store, index *flat.Index, embedder driven.EmbeddingService) (*services.Pipeline, error) {
	archiver, err := archivefs.New(cfg.StagingRoot, cfg.ArchiveRoot)
	if err != nil {
		return nil, err
	}
	return services.NewPipeline(services.PipelineConfig{
		Tracker:     tracker,
		Registry:    loaders.Defaults(cfg.PagesPerChunk),
		Embedder:    embedder,
		Index:       index,
		Archiver:    archiver,
		StagingRoot: cfg.StagingRoot,
		IndexDir:    cfg.IndexDir,
		BatchSize:   cfg.BatchSize,
	})
}

func newRetriever(withGenerator bool) (*services.Retriever, func(), error) {
	index, err := openIndex()
	if err != nil {
		return nil, nil, err
	}
	embedder, err := newEmbedder()
	if err != nil {
		return nil, nil, err
	}

	var generator driven.Generator
	if withGenerator {
		generator, err = newGenerator()
		if err != nil {
			embedder.Close()
			return nil, nil, err
		}
	}

	retriever, err := services.NewRetriever(embedder, index, generator, cfg.RetrievalK)
	if err != nil {
		embedder.Close()
		return nil, nil, err
	}

	cleanup := func() {
		embedder.Close()
		if generator != nil {
			generator.Close()
		}
	}
	return retriever, cleanup, nil
}
