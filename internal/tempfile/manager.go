package tempfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/consensuslabs/festival/backend/internal/logger"
	"github.com/google/uuid"
)

// ErrTooLarge is returned by Save when the source exceeds the limit.
var ErrTooLarge = errors.New("file exceeds the size limit")

// Manager hands out per-request staging directories under a base directory
type Manager struct {
	baseDir     string
	activeDirs  map[string]bool
	logger      logger.Logger
	mu          sync.RWMutex
	permissions os.FileMode
}

// Config represents the configuration for the staging manager
type Config struct {
	BaseDir     string      // Base directory for staged uploads
	Permissions os.FileMode // Permissions for created directories
}

// NewManager creates the base directory and a manager rooted at it
func NewManager(config *Config, log logger.Logger) (*Manager, error) {
	perm := config.Permissions
	if perm == 0 {
		perm = 0o750
	}
	if err := os.MkdirAll(config.BaseDir, perm); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Manager{
		baseDir:     config.BaseDir,
		activeDirs:  make(map[string]bool),
		logger:      log,
		permissions: perm,
	}, nil
}

// CreateTempDir creates a new uniquely named directory
func (m *Manager) CreateTempDir() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dirPath := filepath.Join(m.baseDir, uuid.New().String())
	if err := os.MkdirAll(dirPath, m.permissions); err != nil {
		m.logger.LogError(err, fmt.Sprintf("Failed to create staging directory: path=%s", dirPath))
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	m.activeDirs[dirPath] = true

	m.logger.LogDebug("Created staging directory", map[string]interface{}{
		"path": dirPath,
	})
	return dirPath, nil
}

// Save copies r into dir. Copying stops with ErrTooLarge once more than
// limit bytes were read; the partial file is removed. limit <= 0 disables
// the check.
func (m *Manager) Save(dir, name string, r io.Reader, limit int64) (string, int64, error) {
	if !m.IsManaged(dir) {
		return "", 0, fmt.Errorf("not a managed staging directory: %s", dir)
	}

	path := filepath.Join(dir, uuid.New().String()[:8]+"-"+sanitize(name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create staged file: %w", err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		os.Remove(path)
		return "", n, fmt.Errorf("failed to stage file: %w", copyErr)
	case closeErr != nil:
		os.Remove(path)
		return "", n, fmt.Errorf("failed to stage file: %w", closeErr)
	case limit > 0 && n > limit:
		os.Remove(path)
		return "", n, ErrTooLarge
	}
	return path, n, nil
}

// CleanupDir removes a managed directory and its contents
func (m *Manager) CleanupDir(dirPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.activeDirs[dirPath] {
		return fmt.Errorf("not a managed staging directory: %s", dirPath)
	}
	if err := os.RemoveAll(dirPath); err != nil {
		m.logger.LogError(err, fmt.Sprintf("Failed to clean up staging directory: path=%s", dirPath))
		return fmt.Errorf("failed to clean up staging directory: %w", err)
	}
	delete(m.activeDirs, dirPath)

	m.logger.LogDebug("Cleaned up staging directory", map[string]interface{}{
		"path": dirPath,
	})
	return nil
}

// CleanupAll removes every managed directory
func (m *Manager) CleanupAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for dirPath := range m.activeDirs {
		if err := os.RemoveAll(dirPath); err != nil {
			m.logger.LogError(err, fmt.Sprintf("Failed to clean up staging directory: path=%s", dirPath))
			lastErr = err
			continue
		}
		delete(m.activeDirs, dirPath)
	}
	return lastErr
}

// IsManaged checks if a directory is managed by this manager
func (m *Manager) IsManaged(dirPath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeDirs[dirPath]
}

// ActiveDirs returns the managed directories
func (m *Manager) ActiveDirs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dirs := make([]string, 0, len(m.activeDirs))
	for dir := range m.activeDirs {
		dirs = append(dirs, dir)
	}
	return dirs
}

func sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}
