// Package models содержит доменные типы сервиса сокращения URL и телеметрии.
package models

import (
	"fmt"
	"time"
)

// LogOrigin определяет источник события лога
type LogOrigin string

// Допустимые источники событий
const (
	OriginFrontend LogOrigin = "frontend"
	OriginBackend  LogOrigin = "backend"
)

// LogLevel определяет уровень важности события лога.
// Уровни упорядочены: debug < info < warn < error < fatal.
type LogLevel string

// Допустимые уровни логирования
const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
	LevelFatal LogLevel = "fatal"
)

// LogCategory определяет категорию события лога
type LogCategory string

// Допустимые категории событий
const (
	CategoryAPI       LogCategory = "api"
	CategoryComponent LogCategory = "component"
	CategoryPage      LogCategory = "page"
	CategoryState     LogCategory = "state"
	CategoryUtils     LogCategory = "utils"
	CategoryAuth      LogCategory = "auth"
)

// Множества допустимых значений перечислений
var (
	validOrigins = map[LogOrigin]struct{}{
		OriginFrontend: {},
		OriginBackend:  {},
	}
	validLevels = map[LogLevel]struct{}{
		LevelDebug: {},
		LevelInfo:  {},
		LevelWarn:  {},
		LevelError: {},
		LevelFatal: {},
	}
	validCategories = map[LogCategory]struct{}{
		CategoryAPI:       {},
		CategoryComponent: {},
		CategoryPage:      {},
		CategoryState:     {},
		CategoryUtils:     {},
		CategoryAuth:      {},
	}
)

// LogEvent представляет одну запись о событии, подлежащем логированию
type LogEvent struct {
	Origin    LogOrigin              `json:"origin"`
	Level     LogLevel               `json:"level"`
	Category  LogCategory            `json:"category"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// NewLogEvent создаёт LogEvent и проверяет, что origin, level и category
// входят в свои перечисления. При недопустимом значении возвращает ошибку.
func NewLogEvent(origin LogOrigin, level LogLevel, category LogCategory, message string) (LogEvent, error) {
	if _, ok := validOrigins[origin]; !ok {
		return LogEvent{}, fmt.Errorf("invalid log origin: %q", origin)
	}
	if _, ok := validLevels[level]; !ok {
		return LogEvent{}, fmt.Errorf("invalid log level: %q", level)
	}
	if _, ok := validCategories[category]; !ok {
		return LogEvent{}, fmt.Errorf("invalid log category: %q", category)
	}
	return LogEvent{
		Origin:    origin,
		Level:     level,
		Category:  category,
		Message:   message,
		Timestamp: time.Now(),
	}, nil
}

// ClickData представляет один зафиксированный переход по короткой ссылке.
// Запись неизменяема после добавления в ShortURL.
type ClickData struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Location  string    `json:"location"`
	UserAgent string    `json:"user_agent,omitempty"`
	IP        string    `json:"ip,omitempty"`
}

// ShortURL представляет созданную пользователем короткую ссылку
type ShortURL struct {
	ID          string      `json:"id"`
	OriginalURL string      `json:"original_url"`
	ShortCode   string      `json:"short_code"`
	ShortURL    string      `json:"short_url"`
	Validity    int         `json:"validity"`
	IsCustom    bool        `json:"is_custom"`
	UserID      string      `json:"user_id"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Clicks      int         `json:"clicks"`
	ClickData   []ClickData `json:"click_data"`
}

// IsExpired сообщает, истёк ли срок действия ссылки к моменту now
func (u ShortURL) IsExpired(now time.Time) bool {
	return !now.Before(u.ExpiresAt)
}

// ValidationResult содержит итог проверки пользовательского кода:
// флаг валидности и список всех нарушенных правил.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Reasons []string `json:"reasons,omitempty"`
}

// ShortenRequest представляет JSON-запрос на сокращение URL
type ShortenRequest struct {
	URL        string `json:"url"`
	CustomCode string `json:"custom_code,omitempty"`
	Validity   int    `json:"validity,omitempty"`
}

// ShortenResponse представляет JSON-ответ с коротким URL
type ShortenResponse struct {
	Result    string    `json:"result"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpandResponse представляет JSON-ответ с оригинальным URL
type ExpandResponse struct {
	URL string `json:"url"`
}

// BatchRequest представляет элемент пакетного запроса на сокращение
type BatchRequest struct {
	CorrelationID string `json:"correlation_id"`
	OriginalURL   string `json:"original_url"`
	Validity      int    `json:"validity,omitempty"`
}

// BatchResponse представляет элемент пакетного ответа
type BatchResponse struct {
	CorrelationID string `json:"correlation_id"`
	ShortURL      string `json:"short_url"`
}

// URLStatsResponse представляет статистику по одной короткой ссылке
type URLStatsResponse struct {
	ShortCode   string      `json:"short_code"`
	OriginalURL string      `json:"original_url"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Clicks      int         `json:"clicks"`
	ClickData   []ClickData `json:"click_data"`
}

// ShortURLResponse представляет короткую ссылку в списке ссылок пользователя
type ShortURLResponse struct {
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	Clicks      int       `json:"clicks"`
}

// StatsResponse представляет сводную статистику сервиса
type StatsResponse struct {
	URLs   int `json:"urls"`
	Users  int `json:"users"`
	Clicks int `json:"clicks"`
}
