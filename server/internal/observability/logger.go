package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldRequestID is the field name for request ID.
	LogFieldRequestID = "request_id"
	// LogFieldRoute is the field name for the matched route.
	LogFieldRoute = "route"
	// LogFieldClientIP is the field name for the client address.
	LogFieldClientIP = "client_ip"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldStatus is the field name for the response status.
	LogFieldStatus = "status"
	// LogFieldErrorCode is the field name for error code.
	LogFieldErrorCode = "error_code"
)

// RequestContext carries per-request logging fields.
type RequestContext struct {
	RequestID string
	Route     string
	ClientIP  string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewRequestContext creates a request context with a generated request ID.
func NewRequestContext(logger *slog.Logger, route, clientIP string) *RequestContext {
	return NewRequestContextWithID(logger, uuid.New().String(), route, clientIP)
}

// NewRequestContextWithID creates a request context with a caller-supplied ID,
// e.g. one forwarded in X-Request-ID.
func NewRequestContextWithID(logger *slog.Logger, requestID, route, clientIP string) *RequestContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestContext{
		RequestID: requestID,
		Route:     route,
		ClientIP:  clientIP,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// WithFields returns a logger with the request fields and attrs attached.
func (r *RequestContext) WithFields(attrs ...slog.Attr) *slog.Logger {
	all := r.baseAttrsAppended(attrs...)
	args := make([]any, 0, len(all))
	for _, attr := range all {
		args = append(args, attr)
	}
	return r.Logger.With(args...)
}

// Info logs an info message.
func (r *RequestContext) Info(msg string, attrs ...slog.Attr) {
	r.Logger.LogAttrs(context.Background(), slog.LevelInfo, msg, r.baseAttrsAppended(attrs...)...)
}

// Debug logs a debug message.
func (r *RequestContext) Debug(msg string, attrs ...slog.Attr) {
	r.Logger.LogAttrs(context.Background(), slog.LevelDebug, msg, r.baseAttrsAppended(attrs...)...)
}

// Warn logs a warning message.
func (r *RequestContext) Warn(msg string, attrs ...slog.Attr) {
	r.Logger.LogAttrs(context.Background(), slog.LevelWarn, msg, r.baseAttrsAppended(attrs...)...)
}

// Error logs an error message with the error.
func (r *RequestContext) Error(msg string, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("error", err.Error()))
	r.Logger.LogAttrs(context.Background(), slog.LevelError, msg, r.baseAttrsAppended(attrs...)...)
}

// Duration returns the elapsed time since the request started.
func (r *RequestContext) Duration() time.Duration {
	return time.Since(r.StartTime)
}

// DurationMs returns the elapsed time in milliseconds.
func (r *RequestContext) DurationMs() int64 {
	return r.Duration().Milliseconds()
}

func (r *RequestContext) baseAttrsAppended(attrs ...slog.Attr) []slog.Attr {
	base := []slog.Attr{
		slog.String(LogFieldRequestID, r.RequestID),
		slog.String(LogFieldRoute, r.Route),
		slog.String(LogFieldClientIP, r.ClientIP),
	}
	return append(base, attrs...)
}

type ctxKey struct{}

// WithRequestContext adds the request context to the context.
func WithRequestContext(ctx context.Context, reqCtx *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, reqCtx)
}

// FromContext extracts the request context from the context.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	reqCtx, ok := ctx.Value(ctxKey{}).(*RequestContext)
	return reqCtx, ok
}

// LoggerFrom returns the request logger stored in ctx, or the default logger.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if reqCtx, ok := FromContext(ctx); ok {
		return reqCtx.WithFields()
	}
	return slog.Default()
}
