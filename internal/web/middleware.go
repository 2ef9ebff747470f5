package web

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/kamusis/skillcat/internal/logger"
)

type htmxKey struct{}

// HTMX marks requests coming from htmx so handlers can answer with fragments.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		ctx := context.WithValue(r.Context(), htmxKey{}, is)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IsHTMX reports whether the request was marked by HTMX.
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(htmxKey{}).(bool)
	return v
}

// RequestLogger attaches a request-scoped entry to the context and logs one
// line per request once it completes.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		entry := logger.G(r.Context())
		if rid := chimw.GetReqID(r.Context()); rid != "" {
			entry = entry.WithField("request_id", rid)
		}
		ctx := logger.WithLogger(r.Context(), entry)

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r.WithContext(ctx))

		entry.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.status,
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_ip":   r.RemoteAddr,
			"htmx":        IsHTMX(r.Context()),
		}).Info("request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
