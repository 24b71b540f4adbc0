// Package app содержит HTTP-обработчики сервиса сокращения URL.
package app

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tempizhere/linkstat/internal/middleware"
	"github.com/tempizhere/linkstat/internal/models"
	"github.com/tempizhere/linkstat/internal/repository"
	"github.com/tempizhere/linkstat/internal/service"
	"github.com/tempizhere/linkstat/internal/store"
	"github.com/tempizhere/linkstat/internal/telemetry"
)

// App содержит хендлеры и зависимости
type App struct {
	svc        *service.Service
	db         store.Database
	dispatcher *telemetry.Dispatcher
}

// NewApp создаёт новое приложение
func NewApp(svc *service.Service, db store.Database, dispatcher *telemetry.Dispatcher) *App {
	return &App{svc: svc, db: db, dispatcher: dispatcher}
}

// HandlePostURL обрабатывает POST-запросы на "/"
func (a *App) HandlePostURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	u, err := a.svc.CreateShortURL(strings.TrimSpace(string(body)), "", 0, userID)
	if err != nil {
		a.handleCreateError(w, err, false)
		return
	}

	a.emitInfo(models.CategoryAPI, "short url created", map[string]interface{}{
		"short_code": u.ShortCode,
	})

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusCreated)
	if _, err := w.Write([]byte(u.ShortURL)); err != nil {
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
	}
}

// HandleJSONShorten обрабатывает POST-запросы на "/api/shorten"
func (a *App) HandleJSONShorten(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}

	var reqBody models.ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := a.svc.CreateShortURL(reqBody.URL, reqBody.CustomCode, reqBody.Validity, userID)
	if err != nil {
		a.handleCreateError(w, err, true)
		return
	}

	a.emitInfo(models.CategoryAPI, "short url created", map[string]interface{}{
		"short_code": u.ShortCode,
		"is_custom":  u.IsCustom,
	})

	a.writeJSONResponse(w, http.StatusCreated, models.ShortenResponse{
		Result:    u.ShortURL,
		ExpiresAt: u.ExpiresAt,
	})
}

// HandleGetURL обрабатывает GET-запросы на "/{code}": разрешает код,
// фиксирует переход и перенаправляет на оригинальный URL
func (a *App) HandleGetURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	code := chi.URLParam(r, "code")
	if code == "" {
		http.Error(w, "Missing short code", http.StatusBadRequest)
		return
	}

	click := models.ClickData{
		Source:    trafficSource(r.Referer()),
		Location:  clickLocation(r),
		UserAgent: r.UserAgent(),
		IP:        r.Header.Get("X-Real-IP"),
	}

	originalURL, err := a.svc.ResolveAndTrack(code, click)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			http.Error(w, "URL not found", http.StatusNotFound)
		case errors.Is(err, service.ErrURLExpired):
			http.Error(w, "URL expired", http.StatusGone)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	a.emitInfo(models.CategoryPage, "short url visited", map[string]interface{}{
		"short_code": code,
		"source":     click.Source,
	})

	w.Header().Set("Location", originalURL)
	w.WriteHeader(http.StatusTemporaryRedirect)
}

// HandleJSONExpand обрабатывает GET-запросы на "/api/expand/{code}" без фиксации перехода
func (a *App) HandleJSONExpand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	code := chi.URLParam(r, "code")
	u, exists := a.svc.Get(code)
	if !exists {
		a.writeJSONResponse(w, http.StatusNotFound, struct {
			Error string `json:"error"`
		}{Error: "URL not found"})
		return
	}
	a.writeJSONResponse(w, http.StatusOK, models.ExpandResponse{URL: u.OriginalURL})
}

// HandleURLStats обрабатывает GET-запросы на "/api/urls/{code}/stats"
func (a *App) HandleURLStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	code := chi.URLParam(r, "code")
	stats, err := a.svc.GetURLStats(code)
	if err != nil {
		a.writeJSONResponse(w, http.StatusNotFound, struct {
			Error string `json:"error"`
		}{Error: "URL not found"})
		return
	}
	a.writeJSONResponse(w, http.StatusOK, stats)
}

// HandleBatchShorten обрабатывает POST-запросы на "/api/shorten/batch"
func (a *App) HandleBatchShorten(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	var reqBody []models.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if len(reqBody) == 0 {
		http.Error(w, "Empty batch", http.StatusBadRequest)
		return
	}
	for _, req := range reqBody {
		if req.CorrelationID == "" {
			http.Error(w, "Missing correlation_id", http.StatusBadRequest)
			return
		}
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	respBody, err := a.svc.BatchShorten(reqBody, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCodeTaken) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a.emitInfo(models.CategoryAPI, "batch shortened", map[string]interface{}{
		"count": len(respBody),
	})

	a.writeJSONResponse(w, http.StatusCreated, respBody)
}

// HandleUserURLs обрабатывает GET-запросы на "/api/user/urls"
func (a *App) HandleUserURLs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	urls := a.svc.GetUserURLs(userID)
	if len(urls) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]models.ShortURLResponse, len(urls))
	for i, u := range urls {
		resp[i] = models.ShortURLResponse{
			ShortURL:    u.ShortURL,
			OriginalURL: u.OriginalURL,
			ExpiresAt:   u.ExpiresAt,
			Clicks:      u.Clicks,
		}
	}
	a.writeJSONResponse(w, http.StatusOK, resp)
}

// HandleCleanupExpired обрабатывает DELETE-запросы на "/api/user/expired"
func (a *App) HandleCleanupExpired(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	removed, err := a.svc.CleanupExpired(userID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	a.emitInfo(models.CategoryState, "expired urls removed", map[string]interface{}{
		"removed": removed,
	})

	a.writeJSONResponse(w, http.StatusOK, struct {
		Removed int `json:"removed"`
	}{Removed: removed})
}

// HandlePing обрабатывает GET-запросы на "/ping"
func (a *App) HandlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.db == nil {
		http.Error(w, "Database not configured", http.StatusInternalServerError)
		return
	}
	if err := a.db.Ping(); err != nil {
		http.Error(w, "Database connection failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleStats обрабатывает GET-запросы на "/api/internal/stats"
func (a *App) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.writeJSONResponse(w, http.StatusOK, a.svc.GetStats())
}

// handleCreateError переводит ошибки создания ссылки в HTTP-ответ
func (a *App) handleCreateError(w http.ResponseWriter, err error, asJSON bool) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		if asJSON {
			a.writeJSONResponse(w, http.StatusBadRequest, validationErr.Result)
			return
		}
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrCodeTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrGenerationExhausted):
		a.emitError(models.CategoryAPI, "short code generation exhausted", nil)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

// writeJSONResponse пишет JSON-ответ с проверкой ошибок
func (a *App) writeJSONResponse(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to encode JSON", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
	}
}

// emitInfo отправляет событие телеметрии, не блокируя обработку запроса
func (a *App) emitInfo(category models.LogCategory, message string, fields map[string]interface{}) {
	if a.dispatcher == nil {
		return
	}
	go a.dispatcher.Info(category, message, fields)
}

// emitError отправляет событие телеметрии уровня error
func (a *App) emitError(category models.LogCategory, message string, fields map[string]interface{}) {
	if a.dispatcher == nil {
		return
	}
	go a.dispatcher.Error(category, message, fields)
}

// trafficSource определяет источник перехода по заголовку Referer
func trafficSource(referer string) string {
	if referer == "" {
		return "direct"
	}
	switch {
	case strings.Contains(referer, "google.") || strings.Contains(referer, "bing.") || strings.Contains(referer, "yandex."):
		return "search"
	case strings.Contains(referer, "facebook.") || strings.Contains(referer, "twitter.") ||
		strings.Contains(referer, "t.co") || strings.Contains(referer, "vk.com"):
		return "social"
	default:
		return "referral"
	}
}

// clickLocation определяет местоположение клиента по заголовкам запроса
func clickLocation(r *http.Request) string {
	if country := r.Header.Get("X-Country"); country != "" {
		return country
	}
	return "unknown"
}
