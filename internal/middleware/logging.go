package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs each request once. Server errors carry the errors
// handlers attached with AbortWithError.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"requestId", GetRequestID(c),
		}
		if p := Principal(c); p.ID != 0 {
			attrs = append(attrs, "role", p.Role, "principalId", p.ID)
		}

		switch {
		case status >= http.StatusInternalServerError:
			if len(c.Errors) > 0 {
				attrs = append(attrs, "error", c.Errors.String())
			}
			log.ErrorContext(c.Request.Context(), "request failed", attrs...)
		case status >= http.StatusBadRequest:
			log.WarnContext(c.Request.Context(), "request rejected", attrs...)
		default:
			log.InfoContext(c.Request.Context(), "request", attrs...)
		}
	}
}
