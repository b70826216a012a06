package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

// Context keys for the logger and the identity fields it propagates.
const (
	LoggerKey    contextKey = "logger"
	RequestIDKey contextKey = "request_id"
	TenantIDKey  contextKey = "tenant_id"
	UserIDKey    contextKey = "user_id"
)

// WithContext attaches the logger to the context.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext returns the logger carried by the context, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// withField stores value under key and re-attaches a logger enriched with
// the same field, so downstream log lines carry it automatically.
func withField(ctx context.Context, logger *zap.Logger, key contextKey, value string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, key, value)
	enriched := logger.With(zap.String(string(key), value))
	return WithContext(ctx, enriched), enriched
}

// WithRequestID propagates the request id through context and logger.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, RequestIDKey, requestID)
}

// WithTenantID propagates the tenant id through context and logger.
func WithTenantID(ctx context.Context, logger *zap.Logger, tenantID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, TenantIDKey, tenantID)
}

// WithUserID propagates the user id through context and logger.
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, UserIDKey, userID)
}

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// GetRequestID returns the request id stored in the context, or "".
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// GetTenantID returns the tenant id stored in the context, or "".
func GetTenantID(ctx context.Context) string {
	return stringValue(ctx, TenantIDKey)
}

// GetUserID returns the user id stored in the context, or "".
func GetUserID(ctx context.Context) string {
	return stringValue(ctx, UserIDKey)
}

// GetTraceID returns the active span's trace id, or "" when the context
// carries no recording trace.
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the active span's span id, or "".
func GetSpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}

// WithTraceContext returns the logger with trace_id and span_id fields when
// the context has a valid span, unchanged otherwise.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// ContextLogger logs with every identity field the context knows about:
// trace_id and span_id from the active span, plus request_id, tenant_id and
// user_id when present.
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L builds a ContextLogger around the context's own logger.
//
//	logger.L(ctx).Info("stock adjusted", zap.String("sku", sku))
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: FromContext(ctx)}
}

// WithLogger builds a ContextLogger around an explicitly supplied logger,
// bypassing whatever the context carries.
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: logger}
}

func (cl *ContextLogger) enrichedLogger() *zap.Logger {
	l := cl.logger
	if l == nil {
		l = zap.NewNop()
	}

	l = WithTraceContext(cl.ctx, l)

	for _, key := range []contextKey{RequestIDKey, TenantIDKey, UserIDKey} {
		if v := stringValue(cl.ctx, key); v != "" {
			l = l.With(zap.String(string(key), v))
		}
	}

	return l
}

// With returns a child ContextLogger carrying additional fields.
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, logger: cl.logger.With(fields...)}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Debug(msg, fields...)
}

func (cl *ContextLogger) Info(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Info(msg, fields...)
}

func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Warn(msg, fields...)
}

func (cl *ContextLogger) Error(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Error(msg, fields...)
}

// Fatal logs and then exits the process.
func (cl *ContextLogger) Fatal(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Fatal(msg, fields...)
}

// Panic logs and then panics.
func (cl *ContextLogger) Panic(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Panic(msg, fields...)
}

// Zap exposes the enriched *zap.Logger for code that wants one directly.
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.enrichedLogger()
}

// Sugar exposes the enriched logger's sugared form.
func (cl *ContextLogger) Sugar() *zap.SugaredLogger {
	return cl.enrichedLogger().Sugar()
}
