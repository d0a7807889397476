package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sugun-2430327/project-backend/internal/application/port"
)

// LocalFileStorage implements port.FileStorage on the local filesystem.
// Uploads land under baseDir/<username>/.
type LocalFileStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage
func NewLocalFileStorage(baseDir string, logger *zap.Logger) port.FileStorage {
	return &LocalFileStorage{baseDir: baseDir, logger: logger}
}

// SaveIDProof stores an identity document and returns the stored path
// relative to the storage root. Filenames are flattened to their base
// name so client-supplied paths cannot escape the upload directory.
func (s *LocalFileStorage) SaveIDProof(ctx context.Context, username, filename string, content io.Reader) (string, error) {
	safeName := filepath.Base(filepath.Clean(filename))
	if safeName == "." || safeName == string(filepath.Separator) || safeName == "" {
		return "", fmt.Errorf("invalid filename %q", filename)
	}

	relPath := filepath.Join(sanitizeSegment(username), safeName)
	fullPath := filepath.Join(s.baseDir, relPath)

	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create upload directory",
			zap.String("path", filepath.Dir(fullPath)),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		s.logger.Error("Failed to create file",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, content)
	if err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("ID proof stored",
		zap.String("path", relPath),
		zap.Int64("size", written))
	return relPath, nil
}

// validatePath rejects paths that resolve outside the storage root
func (s *LocalFileStorage) validatePath(fullPath string) error {
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path escapes storage root: %s", fullPath)
	}
	return nil
}

// sanitizeSegment strips separators from a single path segment
func sanitizeSegment(segment string) string {
	segment = strings.ReplaceAll(segment, "/", "_")
	segment = strings.ReplaceAll(segment, "\\", "_")
	if segment == "" || segment == "." || segment == ".." {
		return "_"
	}
	return segment
}
