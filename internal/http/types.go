package http

import apperrors "github.com/consensuslabs/festival/backend/internal/errors"

// Response represents a standard API response structure
type Response struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message,omitempty"`
	Data    interface{}                `json:"data,omitempty"`
	Error   *Error                     `json:"error,omitempty"`
	Errors  apperrors.ValidationErrors `json:"errors,omitempty"`
}

// Error represents the error structure in responses
type Error struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}
