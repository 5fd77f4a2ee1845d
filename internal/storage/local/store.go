// Package local stores submission files on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/consensuslabs/festival/backend/internal/storage"
)

// Store writes objects below a root directory.
type Store struct {
	root   string
	logger storage.Logger
}

// NewStore creates root when missing.
func NewStore(root string, logger storage.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{root: root, logger: logger}, nil
}

func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// PutFile copies filePath under key.
func (s *Store) PutFile(ctx context.Context, key, filePath, _ string) (*storage.Object, error) {
	dst, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create object directory: %w", err)
	}

	src, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to create object: %w", err)
	}
	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("failed to write object: %w", err)
	}

	s.logger.LogInfo("Stored submission file", map[string]interface{}{
		"key":  key,
		"size": n,
	})
	return &storage.Object{Key: key, Size: n, Location: dst}, nil
}

// Remove deletes the object under key; a missing object is not an error.
func (s *Store) Remove(_ context.Context, key string) error {
	dst, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

var _ storage.ObjectStore = (*Store)(nil)
