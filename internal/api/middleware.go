package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/lei/plr-summary/pkg/logger"
)

// LoggingMiddleware adds structured logging to all requests
type LoggingMiddleware struct {
	logger *logger.Logger
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger *logger.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// Handler wraps HTTP handlers with logging
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Get request ID from chi's middleware
		requestID := middleware.GetReqID(r.Context())
		if requestID == "" {
			requestID = "unknown"
		}

		// Create request-scoped logger
		reqLogger := m.logger.With(
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
		)

		// Add logger and request ID to context
		ctx := logger.NewContext(r.Context(), reqLogger)
		ctx = context.WithValue(ctx, contextKeyRequestID, requestID)

		// Wrap response writer to capture status and bytes
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		reqLogger.Debug("request started",
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent())

		start := time.Now()
		defer func() {
			fields := []interface{}{
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes_written", wrapped.bytesWritten,
			}

			switch {
			case wrapped.statusCode >= 500:
				reqLogger.Error("request completed", fields...)
			case wrapped.statusCode >= 400:
				reqLogger.Warn("request completed", fields...)
			default:
				reqLogger.Info("request completed", fields...)
			}
		}()

		next.ServeHTTP(wrapped, r.WithContext(ctx))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code and bytes written
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// Flush lets streaming handlers flush through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
