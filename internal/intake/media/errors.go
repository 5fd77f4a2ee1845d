package media

import (
	"errors"
	"fmt"
	"strings"
)

// Reasons reported by ConstraintError.
const (
	ReasonExtension   = "invalid_extension"
	ReasonContentType = "invalid_content_type"
	ReasonSize        = "file_too_large"
	ReasonEmpty       = "empty_file"
	ReasonDuration    = "exceeds_max_duration"
	ReasonUnreadable  = "unreadable_duration"
	ReasonTooMany     = "too_many_files"
)

// ErrUnknownRole is returned for a role without an allow-list.
var ErrUnknownRole = errors.New("unknown media role")

// ConstraintError describes why a file was not accepted.
type ConstraintError struct {
	Role    Role
	Reason  string
	Message string
	Cause   error
}

func (e *ConstraintError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Role, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Role, e.Message)
}

func (e *ConstraintError) Unwrap() error { return e.Cause }

func reject(role Role, reason, format string, args ...interface{}) *ConstraintError {
	return &ConstraintError{Role: role, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func formatMiB(n int64) string {
	v := float64(n) / mib
	s := strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
	return s + " MB"
}
