package middleware

import (
	"net/http"
	"time"

	"github.com/fitmova/platform/internal/logging"
)

// TracingMiddleware tags every request with a trace ID and logs it on
// completion. Clients may supply their own via X-Trace-ID to correlate a
// mobile session with server logs.
type TracingMiddleware struct {
	logger *logging.Logger
}

// NewTracingMiddleware creates the tracing middleware.
func NewTracingMiddleware(logger *logging.Logger) *TracingMiddleware {
	return &TracingMiddleware{logger: logger}
}

// Handler returns the middleware handler.
func (m *TracingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = logging.NewTraceID()
		}

		ctx := logging.WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Trace-ID", traceID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rw, r.WithContext(ctx))

		m.logger.LogRequest(ctx, r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
