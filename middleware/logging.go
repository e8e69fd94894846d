package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/routecast/routecast-backend/logger"
)

// RequestLogger logs one structured line per request after it completes.
// Health and metrics probes are skipped to keep the log readable.
func RequestLogger() gin.HandlerFunc {
	skip := map[string]struct{}{
		"/health/liveness":  {},
		"/health/readiness": {},
		"/metrics":          {},
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if _, ok := skip[c.Request.URL.Path]; ok {
			return
		}

		log := logger.GetLogger()
		log.Infow("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"durationMs", time.Since(start).Milliseconds(),
			"requestID", c.GetString(RequestIDKey),
		)
	}
}
