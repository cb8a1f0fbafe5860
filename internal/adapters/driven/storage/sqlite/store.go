// Package sqlite implements the document tracker on SQLite using
// modernc.org/sqlite, a pure-Go driver. The database doubles as the
// audit log of everything the pipeline has seen.
package sqlite

import (
	"context"
	"crypto/md5" //nolint:gosec // Content fingerprint, not security
	"database/sql"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/opsintel-labs/opsintel/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentTracker = (*Store)(nil)

// Store is a SQLite-backed document tracker.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the tracking database at dbPath and runs
// pending migrations. WAL mode is enabled for concurrent readers.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("tracking database path is empty: %w", domain.ErrInvalidInput)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies any .up.sql migrations not yet recorded in
// schema_migrations, in version order.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

const trackedColumns = `id, source_path, doc_type, file_hash, status, chunks_created,
	archive_path, error_message, metadata, created_at, processed_at, updated_at`

// AddDocument registers a new source artifact as pending. A source path
// already present fails with domain.ErrDuplicateSource and leaves the
// existing row untouched.
func (s *Store) AddDocument(ctx context.Context, sourcePath string, docType domain.DocType, computeHash bool, metadata map[string]any) (*domain.TrackedDocument, error) {
	if sourcePath == "" {
		return nil, fmt.Errorf("source path is empty: %w", domain.ErrInvalidInput)
	}

	fileHash := ""
	if computeHash {
		h, err := hashFile(sourcePath)
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", sourcePath, err)
		}
		fileHash = h
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshalling metadata: %w", err)
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tracked_documents (source_path, doc_type, file_hash, status, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sourcePath, string(docType), fileHash, string(domain.StatusPending), string(metadataJSON), now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, fmt.Errorf("source %s already tracked: %w", sourcePath, domain.ErrDuplicateSource)
		}
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting inserted id: %w", err)
	}

	return &domain.TrackedDocument{
		ID:         id,
		SourcePath: sourcePath,
		DocType:    docType,
		FileHash:   fileHash,
		Status:     domain.StatusPending,
		Metadata:   metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// GetByPath retrieves a document by its source path.
func (s *Store) GetByPath(ctx context.Context, sourcePath string) (*domain.TrackedDocument, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+trackedColumns+" FROM tracked_documents WHERE source_path = ?", sourcePath)
	doc, err := scanTracked(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("document %s: %w", sourcePath, domain.ErrNotFound)
		}
		return nil, err
	}
	return doc, nil
}

// MarkProcessing transitions a document to processing. A missing id is
// a no-op so a run can mark documents without pre-checking existence.
func (s *Store) MarkProcessing(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, domain.StatusProcessing, nil)
}

// MarkCompleted records a successful run for the document. When the
// artifact was moved out of staging the terminal status is archived,
// otherwise completed.
func (s *Store) MarkCompleted(ctx context.Context, id int64, chunksCreated int, archivePath string) error {
	status := domain.StatusCompleted
	if archivePath != "" {
		status = domain.StatusArchived
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE tracked_documents
		SET status = ?, chunks_created = ?, archive_path = ?, error_message = '', processed_at = ?, updated_at = ?
		WHERE id = ?`,
		string(status), chunksCreated, archivePath, now, now, id)
	if err != nil {
		return fmt.Errorf("marking document %d completed: %w", id, err)
	}
	return nil
}

// MarkFailed records a failure for the document. The row stays in the
// table; only Requeue puts it back in play.
func (s *Store) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	return s.setStatus(ctx, id, domain.StatusFailed, &errorMessage)
}

// Requeue flips a document back to pending and clears the error text.
func (s *Store) Requeue(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE tracked_documents
		SET status = ?, error_message = '', updated_at = ?
		WHERE id = ?`,
		string(domain.StatusPending), now, id)
	if err != nil {
		return fmt.Errorf("requeueing document %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking requeue result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// IsProcessed reports whether the path has been fully processed.
// Archived counts as processed; it is completed plus a moved artifact.
func (s *Store) IsProcessed(ctx context.Context, sourcePath string) (bool, error) {
	var status string
	row := s.db.QueryRowContext(ctx,
		"SELECT status FROM tracked_documents WHERE source_path = ?", sourcePath)
	if err := row.Scan(&status); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", sourcePath, err)
	}
	return status == string(domain.StatusCompleted) || status == string(domain.StatusArchived), nil
}

// GetPendingDocuments returns pending documents oldest first.
func (s *Store) GetPendingDocuments(ctx context.Context, limit int) ([]domain.TrackedDocument, error) {
	query := "SELECT " + trackedColumns + ` FROM tracked_documents
		WHERE status = ? ORDER BY created_at ASC, id ASC`
	args := []any{string(domain.StatusPending)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pending documents: %w", err)
	}
	defer rows.Close()

	return scanTrackedRows(rows)
}

// GetFailedDocuments returns failed documents oldest first.
func (s *Store) GetFailedDocuments(ctx context.Context) ([]domain.TrackedDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+trackedColumns+` FROM tracked_documents
		WHERE status = ? ORDER BY created_at ASC, id ASC`,
		string(domain.StatusFailed))
	if err != nil {
		return nil, fmt.Errorf("listing failed documents: %w", err)
	}
	defer rows.Close()

	return scanTrackedRows(rows)
}

// GetStats returns aggregate document counts by status.
func (s *Store) GetStats(ctx context.Context) (domain.TrackingStats, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM tracked_documents GROUP BY status")
	if err != nil {
		return domain.TrackingStats{}, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()

	var stats domain.TrackingStats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return domain.TrackingStats{}, fmt.Errorf("scanning counts: %w", err)
		}
		stats.Total += count
		switch domain.ProcessingStatus(status) {
		case domain.StatusPending:
			stats.Pending += count
		case domain.StatusProcessing:
			stats.Processing += count
		case domain.StatusCompleted, domain.StatusArchived:
			stats.Completed += count
		case domain.StatusFailed:
			stats.Failed += count
		}
	}
	return stats, rows.Err()
}

func (s *Store) setStatus(ctx context.Context, id int64, status domain.ProcessingStatus, errorMessage *string) error {
	now := time.Now().UTC()
	var err error
	if errorMessage != nil {
		_, err = s.db.ExecContext(ctx, `
			UPDATE tracked_documents SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
			string(status), *errorMessage, now, id)
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE tracked_documents SET status = ?, updated_at = ? WHERE id = ?`,
			string(status), now, id)
	}
	if err != nil {
		return fmt.Errorf("setting document %d to %s: %w", id, status, err)
	}
	return nil
}

// ==================== Helper Functions ====================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTracked(row rowScanner) (*domain.TrackedDocument, error) {
	var doc domain.TrackedDocument
	var docType, metadataJSON string
	var processedAt sql.NullTime

	if err := row.Scan(&doc.ID, &doc.SourcePath, &docType, &doc.FileHash, (*string)(&doc.Status),
		&doc.ChunksCreated, &doc.ArchivePath, &doc.ErrorMessage, &metadataJSON,
		&doc.CreatedAt, &processedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}

	doc.DocType = domain.DocType(docType)
	if processedAt.Valid {
		t := processedAt.Time
		doc.ProcessedAt = &t
	}
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}
	return &doc, nil
}

func scanTrackedRows(rows *sql.Rows) ([]domain.TrackedDocument, error) {
	var docs []domain.TrackedDocument
	for rows.Next() {
		doc, err := scanTracked(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// hashFile returns the hex MD5 of a regular file, or "" for
// directories and other non-regular sources.
func hashFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New() //nolint:gosec // Content fingerprint, not security
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
