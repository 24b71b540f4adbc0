package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// minCompressSize - минимальный размер ответа, при котором включается сжатие
const minCompressSize = 1400

// GzipMiddleware обрабатывает Gzip-сжатие для запросов и ответов
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Распаковываем сжатое тело запроса
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			gz, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, "Invalid gzip data", http.StatusBadRequest)
				return
			}
			defer gz.Close()
			r.Body = io.NopCloser(gz)
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gw := &gzipResponseWriter{ResponseWriter: w}
		defer gw.Close()

		next.ServeHTTP(gw, r)
	})
}

// gzipResponseWriter оборачивает http.ResponseWriter для сжатия ответа.
// Код статуса не отправляется до первого Write: решение о сжатии
// принимается по первому фрагменту тела, а заголовок Content-Encoding
// должен попасть в ответ до фиксации заголовков.
type gzipResponseWriter struct {
	http.ResponseWriter
	gz         *gzip.Writer
	statusCode int
}

// WriteHeader откладывает отправку статуса до первого Write
func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if w.gz != nil {
		return w.gz.Write(b)
	}

	// Сжимаем только достаточно большие JSON и HTML ответы
	contentType := w.Header().Get("Content-Type")
	compressible := strings.HasPrefix(contentType, "application/json") || strings.HasPrefix(contentType, "text/html")
	if compressible && len(b) >= minCompressSize {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")
		w.flushStatus()
		w.gz = gzip.NewWriter(w.ResponseWriter)
		return w.gz.Write(b)
	}

	w.flushStatus()
	return w.ResponseWriter.Write(b)
}

// flushStatus отправляет отложенный код статуса
func (w *gzipResponseWriter) flushStatus() {
	if w.statusCode != 0 {
		w.ResponseWriter.WriteHeader(w.statusCode)
		w.statusCode = 0
	}
}

// Close завершает поток сжатия и досылает статус ответа без тела
func (w *gzipResponseWriter) Close() {
	if w.gz != nil {
		w.gz.Close()
		return
	}
	w.flushStatus()
}
