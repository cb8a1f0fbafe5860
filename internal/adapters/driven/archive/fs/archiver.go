// Package fs implements archiving by moving processed artifacts from
// the staging tree into a mirrored archive tree.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
)

// Ensure Archiver implements the interface.
var _ driven.Archiver = (*Archiver)(nil)

// Archiver moves artifacts out of staging, preserving the relative
// layout under the archive root so provenance stays readable.
type Archiver struct {
	stagingRoot string
	archiveRoot string
}

// New creates an archiver for the given staging and archive roots.
func New(stagingRoot, archiveRoot string) (*Archiver, error) {
	if stagingRoot == "" || archiveRoot == "" {
		return nil, fmt.Errorf("staging and archive roots are required: %w", domain.ErrInvalidInput)
	}
	return &Archiver{
		stagingRoot: filepath.Clean(stagingRoot),
		archiveRoot: filepath.Clean(archiveRoot),
	}, nil
}

// Archive moves sourcePath to the mirrored location under the archive
// root and returns the destination path. Paths outside the staging
// root are rejected.
func (a *Archiver) Archive(ctx context.Context, sourcePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel, err := filepath.Rel(a.stagingRoot, filepath.Clean(sourcePath))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is not inside staging root %s: %w", sourcePath, a.stagingRoot, domain.ErrArchive)
	}

	dest := filepath.Join(a.archiveRoot, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating archive directory: %v: %w", err, domain.ErrArchive)
	}
	if err := os.Rename(sourcePath, dest); err != nil {
		return "", fmt.Errorf("moving %s: %v: %w", sourcePath, err, domain.ErrArchive)
	}
	return dest, nil
}
