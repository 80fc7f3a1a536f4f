package middleware

import "net/http"

// CORSMiddleware admits browser requests from the configured origins. The
// mobile app talks to the API directly, so in practice this only matters for
// the web dashboard.
type CORSMiddleware struct {
	allowed  map[string]bool
	allowAll bool
}

// NewCORSMiddleware creates the CORS middleware. An entry of "*" allows
// every origin.
func NewCORSMiddleware(allowedOrigins []string) *CORSMiddleware {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = true
	}
	return &CORSMiddleware{allowed: allowed, allowAll: allowAll}
}

// Handler returns the middleware handler.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (m.allowAll || m.allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Trace-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Trace-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
