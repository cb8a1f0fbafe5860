package loaders

import (
	"fmt"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
	"github.com/opsintel-labs/opsintel/internal/loaders/chat"
	"github.com/opsintel-labs/opsintel/internal/loaders/csvdata"
	"github.com/opsintel-labs/opsintel/internal/loaders/email"
	"github.com/opsintel-labs/opsintel/internal/loaders/markdown"
	"github.com/opsintel-labs/opsintel/internal/loaders/pdf"
)

// Ensure Registry implements the interface.
var _ driven.ProcessorRegistry = (*Registry)(nil)

// Registry maps document types to their loader/chunker variant.
type Registry struct {
	processors map[domain.DocType]driven.Processor
	order      []domain.DocType
}

// NewRegistry creates a registry from the given processors.
// Registration order is preserved for DocTypes.
func NewRegistry(processors ...driven.Processor) *Registry {
	r := &Registry{
		processors: make(map[domain.DocType]driven.Processor, len(processors)),
	}
	for _, p := range processors {
		if _, exists := r.processors[p.DocType()]; exists {
			continue
		}
		r.processors[p.DocType()] = p
		r.order = append(r.order, p.DocType())
	}
	return r
}

// Defaults returns a registry with all built-in variants registered.
func Defaults(pagesPerChunk int) *Registry {
	return NewRegistry(
		markdown.New(),
		csvdata.New(),
		chat.New(),
		email.New(),
		pdf.New(pagesPerChunk),
	)
}

// Get returns the processor for a doc type.
func (r *Registry) Get(docType domain.DocType) (driven.Processor, error) {
	p, ok := r.processors[docType]
	if !ok {
		return nil, fmt.Errorf("no processor for %q: %w", docType, domain.ErrUnsupportedType)
	}
	return p, nil
}

// DocTypes returns the registered doc types in registration order.
func (r *Registry) DocTypes() []domain.DocType {
	out := make([]domain.DocType, len(r.order))
	copy(out, r.order)
	return out
}
