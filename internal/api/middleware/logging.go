package middleware

import (
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rbxbridge/rbxbridge/internal/logger"
)

// LoggingMiddleware logs HTTP requests. Polls that return 204 are logged at
// debug level because idle places poll continuously.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		if raw != "" {
			path = path + "?" + redactQuery(raw)
		}

		// Log format: [method] path?query - status (latency)
		if statusCode == 204 || c.Request.URL.Path == "/api/ping" {
			logger.Debugf("[%s] %s - %d (%v)", c.Request.Method, path, statusCode, latency)
			return
		}
		logger.Infof("[%s] %s - %d (%v)", c.Request.Method, path, statusCode, latency)
	}
}

// redactQuery masks the editor token websocket clients pass as ?token=.
func redactQuery(raw string) string {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "<unparsable query>"
	}
	if _, ok := values["token"]; !ok {
		return raw
	}
	values.Set("token", "REDACTED")
	return values.Encode()
}
