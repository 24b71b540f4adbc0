package middleware

import (
	"net/http"
	"time"

	"github.com/tempizhere/linkstat/internal/models"
	"github.com/tempizhere/linkstat/internal/telemetry"
	"go.uber.org/zap"
)

// loggingResponseWriter оборачивает http.ResponseWriter для отслеживания статуса и размера ответа
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

// WriteHeader перехватывает код статуса
func (w *loggingResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write перехватывает размер ответа
func (w *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// LoggingMiddleware создаёт middleware для логирования запросов и ответов.
// Ответы 5xx дополнительно отправляются диспетчеру телеметрии как события
// уровня error; nil dispatcher отключает отправку.
func LoggingMiddleware(logger *zap.Logger, dispatcher *telemetry.Dispatcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(lw, r)

			duration := time.Since(start)
			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("uri", r.RequestURI),
				zap.Int("status", lw.statusCode),
				zap.Int("size", lw.size),
				zap.Duration("duration_ms", duration/time.Millisecond),
			)

			if lw.statusCode >= http.StatusInternalServerError && dispatcher != nil {
				go dispatcher.Error(models.CategoryAPI, "server error", map[string]interface{}{
					"method": r.Method,
					"uri":    r.RequestURI,
					"status": lw.statusCode,
				})
			}
		})
	}
}
