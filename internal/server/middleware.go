package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Veraticus/punchlist/internal/common"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags each request with an id and a request-scoped logger
// that the engine picks up from the context.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		logger := slog.Default().With("request_id", id)
		c.Request = c.Request.WithContext(common.WithLogger(c.Request.Context(), logger))

		c.Next()

		logger.Debug("api request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
