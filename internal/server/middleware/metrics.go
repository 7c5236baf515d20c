package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/giantswarm/mcp-query/internal/instrumentation"
)

// statusRecorder remembers the first status code written.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.written = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Flush keeps SSE streams working through the wrapper.
func (rw *statusRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// HTTPMetrics records request count and latency per method, route and
// status. A nil or disabled provider makes it a pass-through.
func HTTPMetrics(provider *instrumentation.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if provider == nil || !provider.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			provider.Metrics().RecordHTTPRequest(
				r.Context(),
				r.Method,
				routeLabel(r.URL.Path),
				rec.statusCode,
				time.Since(start),
			)
		})
	}
}

// routeLabel maps a request path onto a bounded set of labels. Session
// suffixes collapse onto their transport route and anything unknown becomes
// "other".
func routeLabel(path string) string {
	if path == "" {
		return "/"
	}
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	switch path {
	case "/", "/mcp", "/sse", "/message", "/healthz", "/readyz", "/healthz/detailed", "/metrics":
		return path
	}
	for _, prefix := range []string{"/mcp/", "/sse/", "/message/"} {
		if strings.HasPrefix(path, prefix) {
			return strings.TrimSuffix(prefix, "/") + "/:session"
		}
	}
	return "other"
}
