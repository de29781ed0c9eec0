package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minachen/sproutlog-backend/internal/logger"
)

type RequestLogMiddleware struct {
	log *logger.Logger
}

func NewRequestLogMiddleware(log *logger.Logger) *RequestLogMiddleware {
	return &RequestLogMiddleware{log: log.With("Middleware", "RequestLog")}
}

// Log emits one structured line per request after it completes. Bodies are
// never logged; raw entry text stays out of the logs.
func (m *RequestLogMiddleware) Log() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.log.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
