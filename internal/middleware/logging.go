package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/logging"
)

// RequestLogger logs one structured line per request once it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		entry := logging.WithComponentAndFields("http", log.Fields{
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"action":        c.Query("action"),
			"status":        c.Writer.Status(),
			"bytes_out":     c.Writer.Size(),
			"latency":       latency.Microseconds(),
			"latency_human": latency.String(),
			"request_id":    GetRequestID(c),
		})

		switch {
		case c.Writer.Status() >= 500:
			entry.Error("HTTP request")
		case c.Writer.Status() >= 400:
			entry.Warn("HTTP request")
		default:
			entry.Info("HTTP request")
		}
	}
}
