package httpapi

import (
	"log/slog"
	"net/http"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// requestLogger logs one line per request. The mux fills in the matched
// pattern and path values on r, so they are read after the handler returns.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if r.Pattern != "" {
			attrs = append(attrs, "pattern", r.Pattern)
		}
		if tab := requestTab(r); tab != "" {
			attrs = append(attrs, "tab", tab)
		}
		logger.Info("http request", attrs...)
	})
}

// requestTab is the dashboard tab a request asked for: the {tab} path value
// of a partial, or ?tab= on the page itself.
func requestTab(r *http.Request) string {
	if tab := r.PathValue("tab"); tab != "" {
		return tab
	}
	if r.URL.Path == "/" {
		return r.URL.Query().Get("tab")
	}
	return ""
}
