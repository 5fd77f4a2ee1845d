package tempfile

import "io"

// Stager defines the temporary staging operations used while handling an
// upload.
type Stager interface {
	// CreateTempDir creates a new managed directory and returns its path
	CreateTempDir() (string, error)

	// Save copies at most limit bytes of r into dir under a sanitized name
	Save(dir, name string, r io.Reader, limit int64) (string, int64, error)

	// CleanupDir removes a managed directory and its contents
	CleanupDir(dirPath string) error

	// CleanupAll removes every managed directory
	CleanupAll() error

	// IsManaged checks if a directory is managed by this manager
	IsManaged(dirPath string) bool

	// ActiveDirs lists the managed directories
	ActiveDirs() []string
}
