package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recallio/quotakit/logger"
)

// RequestLogConfig configures the request logging middleware
type RequestLogConfig struct {
	// SkipPaths paths excluded from logging (health probes, metrics)
	SkipPaths []string
}

// DefaultRequestLogConfig returns the default request log configuration
func DefaultRequestLogConfig() RequestLogConfig {
	return RequestLogConfig{}
}

// RequestLog logs one structured line per request. Level follows the
// status code: 5xx error, 4xx warn, everything else info. 429 lines land
// at warn, which keeps rejected-but-healthy traffic out of error alerts.
func RequestLog() gin.HandlerFunc {
	return RequestLogWithConfig(DefaultRequestLogConfig())
}

// RequestLogWithConfig creates the request logging middleware with
// custom configuration
func RequestLogWithConfig(cfg RequestLogConfig) gin.HandlerFunc {
	log := logger.GetLogger("http")

	skipPathsMap := make(map[string]bool)
	for _, path := range cfg.SkipPaths {
		skipPathsMap[path] = true
	}

	return func(c *gin.Context) {
		if skipPathsMap[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("body_size", c.Writer.Size()),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("errors", errs))
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			log.ErrorCtx(ctx, "http request", fields...)
		case status >= 400:
			log.WarnCtx(ctx, "http request", fields...)
		default:
			log.InfoCtx(ctx, "http request", fields...)
		}
	}
}
