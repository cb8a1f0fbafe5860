// Package limit wraps an embedding service with token-bucket rate
// limiting so batch runs stay under provider request quotas.
package limit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// Default limiter configuration. OpenAI allows far more than this on
// paid tiers; the defaults stay safe for trial keys.
const (
	DefaultRequestsPerSecond = 3.0
	DefaultBurst             = 5
)

// Service rate-limits calls to an underlying embedding service.
type Service struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap rate-limits the given embedding service. Non-positive arguments
// fall back to the defaults.
func Wrap(inner driven.EmbeddingService, requestsPerSecond float64, burst int) *Service {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &Service{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Embed waits for a token, then delegates.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Embed(ctx, text)
}

// EmbedBatch waits for a token, then delegates. One token per provider
// call, regardless of batch size.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.EmbedBatch(ctx, texts)
}

// Dimensions delegates to the wrapped service.
func (s *Service) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName delegates to the wrapped service.
func (s *Service) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates without consuming a token.
func (s *Service) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close delegates to the wrapped service.
func (s *Service) Close() error {
	return s.inner.Close()
}
