package errors

import (
	"fmt"
	"sort"
	"strings"
)

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return strings.Join(parts, "; ")
}

// First returns the first error for field, or the first error overall when
// field is empty or absent.
func (e ValidationErrors) First(field string) (ValidationError, bool) {
	if len(e) == 0 {
		return ValidationError{}, false
	}
	if field != "" {
		for _, v := range e {
			if v.Field == field {
				return v, true
			}
		}
	}
	return e[0], true
}

// Map returns the errors keyed by field; the first message wins.
func (e ValidationErrors) Map() map[string]string {
	out := make(map[string]string, len(e))
	for _, v := range e {
		if _, ok := out[v.Field]; !ok {
			out[v.Field] = v.Message
		}
	}
	return out
}

// FromMap converts a field->message map into a list sorted by field.
func FromMap(m map[string]string) ValidationErrors {
	out := make(ValidationErrors, 0, len(m))
	for field, msg := range m {
		out = append(out, ValidationError{Field: field, Message: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StorageError) Unwrap() error { return e.Cause }

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewStorageError creates a new StorageError
func NewStorageError(message string, cause error) *StorageError {
	return &StorageError{
		Message: message,
		Cause:   cause,
	}
}
