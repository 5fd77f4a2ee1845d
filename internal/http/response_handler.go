package http

import (
	"net/http"

	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/gin-gonic/gin"
)

// responseHandler implements the ResponseHandler interface
type responseHandler struct {
	logger Logger
}

// NewResponseHandler creates a new instance of ResponseHandler
func NewResponseHandler(logger Logger) ResponseHandler {
	return &responseHandler{
		logger: logger,
	}
}

// SuccessResponse sends a success response with optional data and message
func (h *responseHandler) SuccessResponse(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreatedResponse sends a 201 success response
func (h *responseHandler) CreatedResponse(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse sends an error response with status code, error code, and message
func (h *responseHandler) ErrorResponse(c *gin.Context, status int, code, message string, err error) {
	if err != nil {
		h.logger.LogError(err, message)
	}

	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

// ValidationErrorResponse sends a single field validation error
func (h *responseHandler) ValidationErrorResponse(c *gin.Context, field, message string) {
	h.ValidationErrorsResponse(c, apperrors.ValidationErrors{{Field: field, Message: message}})
}

// ValidationErrorsResponse sends every field error in the errors array
func (h *responseHandler) ValidationErrorsResponse(c *gin.Context, errs apperrors.ValidationErrors) {
	response := Response{
		Success: false,
		Message: "validation failed",
		Errors:  errs,
		Error: &Error{
			Code:    apperrors.CodeValidation,
			Message: "validation failed",
		},
	}
	if len(errs) == 1 {
		response.Error.Field = errs[0].Field
		response.Error.Message = errs[0].Message
	}
	c.JSON(http.StatusBadRequest, response)
}

// NotFoundResponse sends a not found error response
func (h *responseHandler) NotFoundResponse(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{
		Success: false,
		Error: &Error{
			Code:    "NOT_FOUND",
			Message: message,
		},
	})
}

// ForbiddenResponse sends a forbidden error response
func (h *responseHandler) ForbiddenResponse(c *gin.Context, code, message string) {
	if code == "" {
		code = "FORBIDDEN"
	}
	c.JSON(http.StatusForbidden, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

// InternalErrorResponse sends an internal server error response
func (h *responseHandler) InternalErrorResponse(c *gin.Context, message string, err error) {
	if err != nil {
		h.logger.LogError(err, message)
	}

	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Error: &Error{
			Code:    apperrors.CodeInternal,
			Message: message,
		},
	})
}
