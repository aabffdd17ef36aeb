package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

// FileBackend stores content on the local file system, in a directory per
// content type.
type FileBackend struct {
	baseDir     string
	prefixes    map[interfaces.ContentType]string
	log         *slog.Logger
	locationURI string
}

// NewFileBackend creates a file storage backend rooted at baseDir, creating
// the per-type subdirectories if needed.
func NewFileBackend(baseDir string, log *slog.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	prefixes := map[interfaces.ContentType]string{
		interfaces.SnapshotType: "snapshots",
		interfaces.JournalType:  "journal",
	}
	for _, prefix := range prefixes {
		if err := os.MkdirAll(filepath.Join(baseDir, prefix), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", prefix, err)
		}
	}

	return &FileBackend{
		baseDir:     baseDir,
		prefixes:    prefixes,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Fetch retrieves data by content ID and type. Returns ErrContentNotFound if
// the file does not exist.
func (b *FileBackend) Fetch(_ context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	filePath := b.getFilePath(id, contentType)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, interfaces.ErrContentNotFound
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	b.log.Debug("fetched content from file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))
	return data, nil
}

// Store saves data and returns its content ID.
func (b *FileBackend) Store(_ context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)
	filePath := b.getFilePath(id, contentType)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return id, fmt.Errorf("failed to write file: %w", err)
	}

	b.log.Debug("stored content in file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))
	return id, nil
}

// Available checks that the base directory is still accessible.
func (b *FileBackend) Available(context.Context) bool {
	_, err := os.Stat(b.baseDir)
	return err == nil
}

// Name returns the backend identifier for logging.
func (b *FileBackend) Name() string {
	return fmt.Sprintf("file[%s]", b.baseDir)
}

// LocationURI returns the URI identifying this backend.
func (b *FileBackend) LocationURI() string {
	return b.locationURI
}

func (b *FileBackend) getFilePath(id interfaces.ContentID, contentType interfaces.ContentType) string {
	return filepath.Join(b.baseDir, b.prefixes[contentType], id.String())
}
