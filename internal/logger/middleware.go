package logger

import (
	"time"

	"github.com/caratemple/forum/internal/constants"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SlowRequestThreshold marks requests logged at warning level.
const SlowRequestThreshold = 2 * time.Second

// Middleware logs one entry per request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		entry := WithRequest(c).WithFields(logrus.Fields{
			"status":   c.Writer.Status(),
			"duration": duration.String(),
			"ip":       c.ClientIP(),
		})

		switch {
		case len(c.Errors) > 0:
			entry.WithError(c.Errors.Last()).Error("Request failed")
		case duration > SlowRequestThreshold:
			entry.Warn("Slow request")
		default:
			entry.Info("Request handled")
		}
	}
}

// WithRequest returns an entry carrying the request's method, path and id.
func WithRequest(c *gin.Context) *logrus.Entry {
	fields := logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}
	if id := c.GetString(constants.ContextKeyRequestID); id != "" {
		fields["request_id"] = id
	}
	return logrus.WithFields(fields)
}
