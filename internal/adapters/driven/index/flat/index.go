// Package flat implements an exact brute-force vector index. Every
// stored vector is compared against the query by squared L2 distance,
// so recall is always perfect. Vectors and chunk records live in two
// dense slices joined by insertion ordinal.
package flat

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

const (
	// VectorsFile holds the packed vector array.
	VectorsFile = "vectors.bin"

	// ChunksFile holds the chunk records as JSON.
	ChunksFile = "chunks.json"

	// vectorsFormatVersion guards against reading an incompatible layout.
	vectorsFormatVersion = 1
)

// Index is an in-memory exact nearest-neighbour index over fixed-dimension
// embeddings. Safe for concurrent use.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	vectors    [][]float32
	chunks     []domain.Chunk
}

// New creates an empty index for embeddings of the given dimension.
func New(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d: %w", dimensions, domain.ErrInvalidInput)
	}
	return &Index{dimensions: dimensions}, nil
}

// Open loads an index from dir if persisted artifacts exist there, and
// returns a fresh empty index of the given dimension otherwise.
func Open(dir string, dimensions int) (*Index, error) {
	idx, err := New(dimensions)
	if err != nil {
		return nil, err
	}
	if err := idx.Load(dir); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return idx, nil
		}
		return nil, err
	}
	return idx, nil
}

// Add appends embedded chunks to the index. All embeddings are validated
// before anything is appended, so a dimension mismatch mutates nothing.
func (idx *Index) Add(chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for i, chunk := range chunks {
		if len(chunk.Embedding) != idx.dimensions {
			return fmt.Errorf("chunk %d has %d dimensions, index expects %d: %w",
				i, len(chunk.Embedding), idx.dimensions, domain.ErrDimensionMismatch)
		}
	}

	for _, chunk := range chunks {
		vec := make([]float32, idx.dimensions)
		copy(vec, chunk.Embedding)
		idx.vectors = append(idx.vectors, vec)
		idx.chunks = append(idx.chunks, chunk.WithoutEmbedding())
	}

	if len(idx.vectors) != len(idx.chunks) {
		return fmt.Errorf("vector/chunk count diverged: %d vs %d", len(idx.vectors), len(idx.chunks))
	}
	return nil
}

// Search returns the k nearest stored chunks to the query vector,
// ordered by ascending squared L2 distance with 1-based ranks.
func (idx *Index) Search(query []float32, k int) ([]domain.ScoredChunk, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("query has %d dimensions, index expects %d: %w",
			len(query), idx.dimensions, domain.ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidInput)
	}
	if len(idx.vectors) == 0 {
		return []domain.ScoredChunk{}, nil
	}

	type scored struct {
		ordinal  int
		distance float32
	}
	all := make([]scored, len(idx.vectors))
	for i, vec := range idx.vectors {
		all[i] = scored{ordinal: i, distance: squaredL2(query, vec)}
	}
	sort.SliceStable(all, func(a, b int) bool {
		return all[a].distance < all[b].distance
	})

	if k > len(all) {
		k = len(all)
	}
	results := make([]domain.ScoredChunk, k)
	for i := 0; i < k; i++ {
		results[i] = domain.ScoredChunk{
			Chunk:    idx.chunks[all[i].ordinal],
			Distance: all[i].distance,
			Rank:     i + 1,
		}
	}
	return results, nil
}

// Count returns the number of stored vectors.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Dimensions returns the embedding dimension the index accepts.
func (idx *Index) Dimensions() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dimensions
}

// Stats summarises the index contents by doc type and source.
func (idx *Index) Stats() domain.IndexStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	stats := domain.IndexStats{
		TotalChunks: len(idx.chunks),
		Dimensions:  idx.dimensions,
		ByDocType:   make(map[string]int),
		BySource:    make(map[string]int),
	}
	for _, chunk := range idx.chunks {
		if t := chunk.DocTypeTag(); t != "" {
			stats.ByDocType[t]++
		}
		if s := chunk.SourceTag(); s != "" {
			stats.BySource[s]++
		}
	}
	return stats
}

// Save writes the vector array and the chunk records to dir as two
// co-located files. Each file is written to a temp name and renamed,
// so a crash mid-save never leaves a truncated artifact.
func (idx *Index) Save(dir string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	if err := writeAtomic(filepath.Join(dir, VectorsFile), idx.encodeVectors()); err != nil {
		return fmt.Errorf("saving vectors: %w", err)
	}

	chunksJSON, err := json.Marshal(idx.chunks)
	if err != nil {
		return fmt.Errorf("marshalling chunks: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, ChunksFile), chunksJSON); err != nil {
		return fmt.Errorf("saving chunks: %w", err)
	}
	return nil
}

// Load restores the index from dir, replacing current contents. The
// dimension comes from the persisted vector file. Both artifacts must
// be present.
func (idx *Index) Load(dir string) error {
	vectorsData, err := os.ReadFile(filepath.Join(dir, VectorsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("vector file missing in %s: %w", dir, domain.ErrNotFound)
		}
		return fmt.Errorf("reading vectors: %w", err)
	}
	chunksData, err := os.ReadFile(filepath.Join(dir, ChunksFile))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("chunk file missing in %s: %w", dir, domain.ErrNotFound)
		}
		return fmt.Errorf("reading chunks: %w", err)
	}

	dimensions, vectors, err := decodeVectors(vectorsData)
	if err != nil {
		return fmt.Errorf("decoding vectors: %w", err)
	}

	var chunks []domain.Chunk
	if err := json.Unmarshal(chunksData, &chunks); err != nil {
		return fmt.Errorf("unmarshalling chunks: %w", err)
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("artifact mismatch: %d vectors but %d chunks", len(vectors), len(chunks))
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.dimensions = dimensions
	idx.vectors = vectors
	idx.chunks = chunks
	return nil
}

// encodeVectors packs the vector array as:
// version(u32) dims(u32) count(u64) then count*dims little-endian float32s.
func (idx *Index) encodeVectors() []byte {
	buf := make([]byte, 16+len(idx.vectors)*idx.dimensions*4)
	binary.LittleEndian.PutUint32(buf[0:], vectorsFormatVersion)
	binary.LittleEndian.PutUint32(buf[4:], uint32(idx.dimensions))
	binary.LittleEndian.PutUint64(buf[8:], uint64(len(idx.vectors)))

	offset := 16
	for _, vec := range idx.vectors {
		for _, f := range vec {
			binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(f))
			offset += 4
		}
	}
	return buf
}

func decodeVectors(data []byte) (int, [][]float32, error) {
	if len(data) < 16 {
		return 0, nil, fmt.Errorf("vector file too short: %d bytes", len(data))
	}
	version := binary.LittleEndian.Uint32(data[0:])
	if version != vectorsFormatVersion {
		return 0, nil, fmt.Errorf("unsupported vector file version %d", version)
	}
	dimensions := int(binary.LittleEndian.Uint32(data[4:]))
	count := int(binary.LittleEndian.Uint64(data[8:]))
	if dimensions <= 0 {
		return 0, nil, fmt.Errorf("invalid dimension %d in vector file", dimensions)
	}

	expected := 16 + count*dimensions*4
	if len(data) != expected {
		return 0, nil, fmt.Errorf("vector file has %d bytes, expected %d", len(data), expected)
	}

	vectors := make([][]float32, count)
	offset := 16
	for i := range vectors {
		vec := make([]float32, dimensions)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
			offset += 4
		}
		vectors[i] = vec
	}
	return dimensions, vectors, nil
}

// squaredL2 returns the squared Euclidean distance between two vectors
// of equal length. The square root is skipped since ordering is
// monotonic without it.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

