package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TraceIDKeyDefault gin/request context key holding the trace id
	TraceIDKeyDefault = "trace_id"

	// TraceIDHeaderDefault header carrying the trace id in and out
	TraceIDHeaderDefault = "X-Trace-ID"
)

// TraceConfig configures the trace id middleware
type TraceConfig struct {
	// TraceIDKey context key (default "trace_id")
	TraceIDKey string

	// TraceIDHeader request/response header (default "X-Trace-ID")
	TraceIDHeader string

	// EnableResponseHeader echo the trace id on the response (default true)
	EnableResponseHeader bool

	// Generator custom id generator (default uuid v4)
	Generator func() string
}

// DefaultTraceConfig returns the default trace configuration
func DefaultTraceConfig() TraceConfig {
	return TraceConfig{
		TraceIDKey:           TraceIDKeyDefault,
		TraceIDHeader:        TraceIDHeaderDefault,
		EnableResponseHeader: true,
		Generator:            func() string { return uuid.New().String() },
	}
}

// TraceID tags every request with a trace id. When an OpenTelemetry span
// is already active its trace id wins; otherwise the inbound header is
// honored, and a fresh uuid is minted as the last resort. The logger
// picks the id up from the request context on every line.
func TraceID(cfg TraceConfig) gin.HandlerFunc {
	if cfg.TraceIDKey == "" {
		cfg.TraceIDKey = TraceIDKeyDefault
	}
	if cfg.TraceIDHeader == "" {
		cfg.TraceIDHeader = TraceIDHeaderDefault
	}
	if cfg.Generator == nil {
		cfg.Generator = func() string { return uuid.New().String() }
	}

	return func(c *gin.Context) {
		var traceID string

		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		} else {
			traceID = c.GetHeader(cfg.TraceIDHeader)
			if traceID == "" {
				traceID = cfg.Generator()
			}
			ctx := context.WithValue(c.Request.Context(), cfg.TraceIDKey, traceID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Set(cfg.TraceIDKey, traceID)

		if cfg.EnableResponseHeader {
			c.Writer.Header().Set(cfg.TraceIDHeader, traceID)
		}

		c.Next()
	}
}

// GetTraceID reads the trace id from the gin context
func GetTraceID(c *gin.Context) string {
	value, exists := c.Get(TraceIDKeyDefault)
	if !exists {
		return ""
	}
	if id, ok := value.(string); ok {
		return id
	}
	return ""
}
