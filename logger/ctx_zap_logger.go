package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CtxZapLogger is a context-aware zap wrapper. The module is bound at
// creation time; call sites only pass a ctx and the trace id (when the
// request carries an active span) is attached automatically.
type CtxZapLogger struct {
	base    *zap.Logger
	module  string
	appName string
}

// DebugCtx logs at debug level, enriching fields from ctx
func (l *CtxZapLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Debug(msg, l.enrichFields(ctx, fields)...)
}

// Debug logs at debug level without a context
func (l *CtxZapLogger) Debug(msg string, fields ...zap.Field) {
	l.DebugCtx(context.Background(), msg, fields...)
}

// InfoCtx logs at info level, enriching fields from ctx
func (l *CtxZapLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Info(msg, l.enrichFields(ctx, fields)...)
}

// Info logs at info level without a context
func (l *CtxZapLogger) Info(msg string, fields ...zap.Field) {
	l.InfoCtx(context.Background(), msg, fields...)
}

// WarnCtx logs at warn level, enriching fields from ctx
func (l *CtxZapLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Warn(msg, l.enrichFields(ctx, fields)...)
}

// Warn logs at warn level without a context
func (l *CtxZapLogger) Warn(msg string, fields ...zap.Field) {
	l.WarnCtx(context.Background(), msg, fields...)
}

// ErrorCtx logs at error level, enriching fields from ctx
func (l *CtxZapLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Error(msg, l.enrichFields(ctx, fields)...)
}

// Error logs at error level without a context
func (l *CtxZapLogger) Error(msg string, fields ...zap.Field) {
	l.ErrorCtx(context.Background(), msg, fields...)
}

// With returns a new logger with preset fields
func (l *CtxZapLogger) With(fields ...zap.Field) *CtxZapLogger {
	return &CtxZapLogger{
		base:    l.base.With(fields...),
		module:  l.module,
		appName: l.appName,
	}
}

// GetZapLogger exposes the underlying *zap.Logger for third-party integrations
func (l *CtxZapLogger) GetZapLogger() *zap.Logger {
	return l.base
}

// enrichFields adds app_name and, when present, the active trace id
func (l *CtxZapLogger) enrichFields(ctx context.Context, fields []zap.Field) []zap.Field {
	enriched := make([]zap.Field, 0, len(fields)+2)

	if l.appName != "" {
		enriched = append(enriched, zap.String("app_name", l.appName))
	}

	if ctx != nil {
		if span := trace.SpanContextFromContext(ctx); span.IsValid() {
			enriched = append(enriched, zap.String("trace_id", span.TraceID().String()))
		} else if id, ok := ctx.Value("trace_id").(string); ok && id != "" {
			enriched = append(enriched, zap.String("trace_id", id))
		}
	}

	return append(enriched, fields...)
}
