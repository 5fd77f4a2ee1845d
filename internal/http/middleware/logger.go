package middleware

import (
	"strings"
	"time"

	"github.com/consensuslabs/festival/backend/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Request headers read by RequestLoggerMiddleware.
const (
	RequestIDHeader = "X-Request-Id"
	DeviceIDHeader  = "X-Device-Id"
)

const maxDeviceIDLength = 128

// RequestLoggerMiddleware creates a middleware for logging HTTP requests.
// It assigns a request ID, records the optional device header and stores a
// request-scoped logger in the context.
func RequestLoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		start := time.Now()

		contextLogger := log.WithRequestID(requestID)
		deviceID := strings.TrimSpace(c.GetHeader(DeviceIDHeader))
		if len(deviceID) > maxDeviceIDLength {
			deviceID = deviceID[:maxDeviceIDLength]
		}
		if deviceID != "" {
			contextLogger = contextLogger.WithFields(map[string]interface{}{"deviceID": deviceID})
			c.Set(DeviceIDKey, deviceID)
		}
		c.Set(RequestIDKey, requestID)
		c.Set(LoggerKey, contextLogger)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		statusCode := c.Writer.Status()
		fields := map[string]interface{}{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    statusCode,
			"latency":   time.Since(start),
			"clientIP":  c.ClientIP(),
			"userAgent": c.Request.UserAgent(),
		}
		if submissionID, exists := c.Get(SubmissionIDKey); exists {
			fields["submissionID"] = submissionID
		}

		switch {
		case statusCode >= 500:
			contextLogger.WithFields(fields).LogError(nil, "Server error processing request")
		case statusCode >= 400:
			contextLogger.LogWarn("Client error processing request", fields)
		default:
			contextLogger.LogInfo("Request completed", fields)
		}
	}
}
