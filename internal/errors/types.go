package errors

// ValidationError represents a validation error with a field and message
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is an ordered list of field errors
type ValidationErrors []ValidationError

// StorageError represents an error during storage operations
type StorageError struct {
	Message string
	Cause   error
}
