package submission

import (
	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/gin-gonic/gin"
)

// ResponseHandler defines the interface for handling HTTP responses
type ResponseHandler interface {
	SuccessResponse(c *gin.Context, data interface{}, message string)
	CreatedResponse(c *gin.Context, data interface{}, message string)
	ErrorResponse(c *gin.Context, status int, code, message string, err error)
	ValidationErrorsResponse(c *gin.Context, errs apperrors.ValidationErrors)
	NotFoundResponse(c *gin.Context, message string)
	ForbiddenResponse(c *gin.Context, code, message string)
	InternalErrorResponse(c *gin.Context, message string, err error)
}
