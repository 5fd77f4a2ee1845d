package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Status is the health check payload.
type Status struct {
	Status string            `json:"status"`
	Uptime int64             `json:"uptime"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler handles health check related endpoints
type Handler struct {
	responseHandler ResponseHandler
	checks          map[string]Pinger
	started         time.Time
	timeout         time.Duration
}

// NewHandler creates a new health check handler. Every entry of checks is
// pinged on each request.
func NewHandler(responseHandler ResponseHandler, checks map[string]Pinger) *Handler {
	return &Handler{
		responseHandler: responseHandler,
		checks:          checks,
		started:         time.Now(),
		timeout:         2 * time.Second,
	}
}

// HandleHealthCheck reports liveness and the state of each dependency
func (h *Handler) HandleHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := Status{Status: "healthy", Uptime: int64(time.Since(h.started).Seconds())}
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	var failed error
	for _, name := range names {
		if status.Checks == nil {
			status.Checks = make(map[string]string, len(names))
		}
		if err := h.checks[name].Ping(ctx); err != nil {
			status.Checks[name] = err.Error()
			if failed == nil {
				failed = err
			}
			continue
		}
		status.Checks[name] = "ok"
	}

	if failed != nil {
		h.responseHandler.ErrorResponse(c, http.StatusServiceUnavailable, "UNHEALTHY", "dependency check failed: "+failed.Error(), nil)
		return
	}
	h.responseHandler.SuccessResponse(c, status, "Health check successful")
}
