package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"candidate-insights/internal/shared/telemetry"
)

const (
	// RunIDKey and OperationKey are set by handlers that start gateway calls.
	RunIDKey     = "runId"
	OperationKey = "operation"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		reqID := RequestIDFromContext(c)

		runID, _ := c.Get(RunIDKey)
		operation, _ := c.Get(OperationKey)

		telemetry.Info("request.complete", map[string]any{
			"request_id":  reqID,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      status,
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"session_id":  c.Param("sessionId"),
			"operation":   operation,
			"run_id":      runID,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
