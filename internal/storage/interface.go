package storage

import (
	"context"
	"path"
	"strings"
)

// ObjectStore persists uploaded files.
type ObjectStore interface {
	// PutFile uploads the local file at filePath under key
	PutFile(ctx context.Context, key, filePath, contentType string) (*Object, error)
	// Remove deletes the object stored under key
	Remove(ctx context.Context, key string) error
	// Close releases any held resources
	Close() error
}

// Object describes a stored file.
type Object struct {
	Key      string
	Size     int64
	Location string
}

// Logger interface for logging operations
type Logger interface {
	LogInfo(msg string, fields map[string]interface{})
	LogError(err error, msg string) error
}

// SubmissionKey builds the object key of a submission file.
func SubmissionKey(submissionID, role, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return path.Join("submissions", submissionID, role, name)
}
