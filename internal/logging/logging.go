// Package logging provides the request-scoped zerolog logger and the
// context keys used to propagate trace and identity information.
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	// TraceIDKey carries the request trace identifier.
	TraceIDKey contextKey = "trace_id"
	// UserIDKey carries the authenticated member identifier.
	UserIDKey contextKey = "user_id"
	// RoleKey carries the authenticated role.
	RoleKey contextKey = "role"
)

// Logger wraps zerolog for the HTTP surface.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger builds a zerolog-backed logger tagged with a service name. The
// level comes from LOG_LEVEL, defaulting to info.
func NewLogger(service string) *Logger {
	return New(service, os.Getenv("LOG_LEVEL"), "json")
}

// New builds a logger with an explicit level and format. Unknown levels fall
// back to info; format "console" enables the human-readable writer.
func New(service, level, format string) *Logger {
	parsed := zerolog.InfoLevel
	if raw := strings.ToLower(strings.TrimSpace(level)); raw != "" {
		if lv, err := zerolog.ParseLevel(raw); err == nil {
			parsed = lv
		}
	}
	var zl zerolog.Logger
	if strings.EqualFold(format, "console") {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		zl = zerolog.New(os.Stdout)
	}
	zl = zl.Level(parsed).
		With().
		Timestamp().
		Str("service", service).
		Logger()
	return &Logger{zl: zl}
}

// NewTraceID generates a fresh trace identifier.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID stores the trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the trace ID from the context, if any.
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID stores the authenticated member ID in the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID returns the authenticated member ID from the context, if any.
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}

// GetRole returns the authenticated role from the context, if any.
func GetRole(ctx context.Context) string {
	if v, ok := ctx.Value(RoleKey).(string); ok {
		return v
	}
	return ""
}

// Entry is a logger enriched with contextual fields.
type Entry struct {
	zl zerolog.Logger
}

// WithContext returns an entry carrying the trace and identity fields stored
// in the context.
func (l *Logger) WithContext(ctx context.Context) *Entry {
	zc := l.zl.With()
	if traceID := GetTraceID(ctx); traceID != "" {
		zc = zc.Str("trace_id", traceID)
	}
	if userID := GetUserID(ctx); userID != "" {
		zc = zc.Str("user_id", userID)
	}
	return &Entry{zl: zc.Logger()}
}

// WithError attaches an error field.
func (e *Entry) WithError(err error) *Entry {
	return &Entry{zl: e.zl.With().Err(err).Logger()}
}

// WithFields attaches arbitrary fields.
func (e *Entry) WithFields(fields map[string]interface{}) *Entry {
	return &Entry{zl: e.zl.With().Fields(fields).Logger()}
}

func (e *Entry) Debug(msg string) { e.zl.Debug().Msg(msg) }
func (e *Entry) Info(msg string)  { e.zl.Info().Msg(msg) }
func (e *Entry) Warn(msg string)  { e.zl.Warn().Msg(msg) }
func (e *Entry) Error(msg string) { e.zl.Error().Msg(msg) }

// LogRequest emits the access log line for a completed request.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	l.zl.Info().
		Str("trace_id", GetTraceID(ctx)).
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("duration", duration).
		Msg("http request")
}

// LogSecurityEvent emits an audit line for security-relevant events such as
// auth failures and rate limiting.
func (l *Logger) LogSecurityEvent(ctx context.Context, event string, fields map[string]interface{}) {
	l.zl.Warn().
		Str("trace_id", GetTraceID(ctx)).
		Str("event", event).
		Fields(fields).
		Msg("security event")
}
