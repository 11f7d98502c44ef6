package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"water-delivery/internal/logger"
)

// Middleware wraps a handler function
type Middleware func(http.HandlerFunc) http.HandlerFunc

// Router registers handlers on a ServeMux with a shared middleware chain
type Router struct {
	mux  *http.ServeMux
	base []Middleware
}

func NewRouter(base ...Middleware) *Router {
	return &Router{mux: http.NewServeMux(), base: base}
}

// Handle registers h for pattern. Route middlewares run inside the base chain.
func (rt *Router) Handle(pattern string, h http.HandlerFunc, mws ...Middleware) {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	for i := len(rt.base) - 1; i >= 0; i-- {
		h = rt.base[i](h)
	}
	rt.mux.HandleFunc(pattern, h)
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// WithLogging assigns a request id and logs each request and its outcome
func WithLogging(log *logger.Logger) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logger.GenerateRequestID()
			}

			r = r.WithContext(logger.WithRequestID(r.Context(), requestID))
			w.Header().Set("X-Request-ID", requestID)

			log.Debug("request_started",
				fmt.Sprintf("%s %s", r.Method, r.URL.Path),
				requestID,
				map[string]any{
					"method":      r.Method,
					"path":        r.URL.Path,
					"remote_addr": r.RemoteAddr,
					"user_agent":  r.Header.Get("User-Agent"),
				})

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next(rw, r)

			log.Info("request_completed",
				fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
				requestID,
				map[string]any{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status_code": rw.statusCode,
					"duration_ms": time.Since(start).Milliseconds(),
				})
		}
	}
}

// WithTimeout bounds the context of every request
func WithTimeout(d time.Duration) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next(w, r.WithContext(ctx))
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
