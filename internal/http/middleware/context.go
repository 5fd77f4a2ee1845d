package middleware

import (
	"github.com/consensuslabs/festival/backend/internal/logger"
	"github.com/gin-gonic/gin"
)

// Keys under which request-scoped values are stored in the gin context.
const (
	LoggerKey       = "logger"
	RequestIDKey    = "requestID"
	DeviceIDKey     = "deviceID"
	SubmissionIDKey = "submissionID"
)

// GetLogger retrieves the logger from the gin context
func GetLogger(c *gin.Context) logger.Logger {
	if log, exists := c.Get(LoggerKey); exists {
		if contextLogger, ok := log.(logger.Logger); ok {
			return contextLogger
		}
	}
	return logger.NewNop()
}

// DeviceID returns the device identifier sent with the request, if any.
func DeviceID(c *gin.Context) string {
	return c.GetString(DeviceIDKey)
}

// RequestID returns the identifier assigned to the request.
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
