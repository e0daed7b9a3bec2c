// Package logging carries request-scoped loggers and trace metadata through
// the context so every stage of rant processing logs with the same ids.
package logging

import (
	"context"
	"log/slog"
)

type loggerKey struct{}
type requestIDKey struct{}
type traceIDKey struct{}
type spanIDKey struct{}

// WithLogger stores the logger on the context. Nil inputs leave the context
// untouched.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request-scoped logger, or slog.Default() when the
// context carries none. Callers never need a nil check.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}

// WithRequestID stores the request identifier assigned by the HTTP layer.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the stored request identifier, or "".
func RequestIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, requestIDKey{})
}

// WithTraceID stores the trace identifier shared by a request's spans.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if ctx == nil || traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the stored trace identifier, or "".
func TraceIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, traceIDKey{})
}

// WithSpanID stores the identifier of the active span.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	if ctx == nil || spanID == "" {
		return ctx
	}
	return context.WithValue(ctx, spanIDKey{}, spanID)
}

// SpanIDFromContext returns the active span identifier, or "".
func SpanIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, spanIDKey{})
}

func stringFromContext(ctx context.Context, key any) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(key).(string); ok {
		return value
	}
	return ""
}
