package httpt

import (
	"time"

	"github.com/Karlitosantana/reima-resale/pkg/logger"

	"github.com/gin-gonic/gin"
)

const _slowRequestThreshold = 200 * time.Millisecond

func (h *ItemHandler) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := h.log.GenerateRequestID()
		ctx := h.log.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (h *ItemHandler) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		method := c.Request.Method

		// The route template keeps the metric label space bounded; raw
		// paths would blow up cardinality on item ids.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		h.log.LogAttrs(c.Request.Context(), logger.InfoLevel, "HTTP request",
			logger.String("method", method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", statusCode),
			logger.String("duration", latency.String()),
			logger.String("client_ip", c.ClientIP()),
			logger.String("user_agent", c.Request.UserAgent()),
		)

		h.metrics.Request(method, path, statusCode, latency)

		if latency > _slowRequestThreshold {
			h.metrics.SlowRequest(method, path, statusCode, latency)
		}
	}
}
