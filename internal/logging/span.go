package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span marks one stage of rant processing, such as analysis or a remote
// transformation call, within a request's trace.
type Span struct {
	name    string
	logger  *slog.Logger
	started time.Time
}

// StartSpan opens a named span under the context's trace, minting a trace id
// when the context has none. The returned context carries a logger annotated
// with the span metadata; pass it to the work the span covers.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := FromContext(ctx)
	if traceID := TraceIDFromContext(ctx); traceID == "" {
		traceID = uuid.NewString()
		ctx = WithTraceID(ctx, traceID)
		logger = logger.With(slog.String("trace_id", traceID))
	}

	spanID := uuid.NewString()
	logger = logger.With(
		slog.String("span_id", spanID),
		slog.String("span_name", name),
	)
	if parent := SpanIDFromContext(ctx); parent != "" {
		logger = logger.With(slog.String("parent_span_id", parent))
	}

	ctx = WithSpanID(ctx, spanID)
	ctx = WithLogger(ctx, logger)

	return ctx, &Span{name: name, logger: logger, started: time.Now()}
}

// End logs the span's duration. Safe on a nil span.
func (s *Span) End() {
	if s == nil {
		return
	}
	s.logger.Info("span completed", slog.Duration("duration", time.Since(s.started)))
}
