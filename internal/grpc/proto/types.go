// Package proto содержит определения типов для gRPC сервиса сокращения URL
package proto

// CreateShortURLRequest представляет запрос на создание короткого URL
type CreateShortURLRequest struct {
	OriginalURL string `json:"original_url"`
	CustomCode  string `json:"custom_code"`
	Validity    int32  `json:"validity"`
}

// CreateShortURLResponse представляет ответ с созданным коротким URL
type CreateShortURLResponse struct {
	ShortURL  string `json:"short_url"`
	ShortCode string `json:"short_code"`
	ExpiresAt int64  `json:"expires_at"`
}

// GetOriginalURLRequest представляет запрос на разрешение короткого кода
type GetOriginalURLRequest struct {
	ShortCode string `json:"short_code"`
	Source    string `json:"source"`
	Location  string `json:"location"`
	UserAgent string `json:"user_agent"`
}

// GetOriginalURLResponse представляет ответ с оригинальным URL
type GetOriginalURLResponse struct {
	OriginalURL string `json:"original_url"`
	Found       bool   `json:"found"`
	Expired     bool   `json:"expired"`
}

// ExpandURLRequest представляет запрос на получение оригинального URL без фиксации перехода
type ExpandURLRequest struct {
	ShortCode string `json:"short_code"`
}

// ExpandURLResponse представляет ответ с оригинальным URL
type ExpandURLResponse struct {
	URL   string `json:"url"`
	Found bool   `json:"found"`
}

// GetURLStatsRequest представляет запрос статистики переходов по коду
type GetURLStatsRequest struct {
	ShortCode string `json:"short_code"`
}

// ClickInfo представляет сведения об одном переходе
type ClickInfo struct {
	Timestamp int64  `json:"timestamp"`
	Source    string `json:"source"`
	Location  string `json:"location"`
	UserAgent string `json:"user_agent"`
}

// GetURLStatsResponse представляет ответ со статистикой переходов
type GetURLStatsResponse struct {
	ShortCode string       `json:"short_code"`
	Clicks    int32        `json:"clicks"`
	ClickData []*ClickInfo `json:"click_data"`
}

// PingRequest представляет запрос проверки состояния
type PingRequest struct{}

// PingResponse представляет ответ проверки состояния
type PingResponse struct {
	DatabaseAvailable bool `json:"database_available"`
}

// BatchRequest представляет элемент пакетного запроса
type BatchRequest struct {
	CorrelationID string `json:"correlation_id"`
	OriginalURL   string `json:"original_url"`
}

// BatchResponse представляет элемент пакетного ответа
type BatchResponse struct {
	CorrelationID string `json:"correlation_id"`
	ShortURL      string `json:"short_url"`
}

// BatchShortenRequest представляет запрос пакетного сокращения
type BatchShortenRequest struct {
	BatchRequests []*BatchRequest `json:"batch_requests"`
}

// BatchShortenResponse представляет ответ пакетного сокращения
type BatchShortenResponse struct {
	BatchResponses []*BatchResponse `json:"batch_responses"`
}

// GetUserURLsRequest представляет запрос на получение URL пользователя
type GetUserURLsRequest struct{}

// ShortURLResponse представляет информацию о коротком URL
type ShortURLResponse struct {
	ShortURL    string `json:"short_url"`
	OriginalURL string `json:"original_url"`
	ExpiresAt   int64  `json:"expires_at"`
	Clicks      int32  `json:"clicks"`
}

// GetUserURLsResponse представляет ответ со списком URL пользователя
type GetUserURLsResponse struct {
	UserUrls []*ShortURLResponse `json:"user_urls"`
}

// CleanupExpiredRequest представляет запрос удаления истёкших ссылок пользователя
type CleanupExpiredRequest struct{}

// CleanupExpiredResponse представляет ответ с числом удалённых ссылок
type CleanupExpiredResponse struct {
	Removed int32 `json:"removed"`
}

// GetStatsRequest представляет запрос статистики
type GetStatsRequest struct{}

// GetStatsResponse представляет ответ со статистикой
type GetStatsResponse struct {
	UrlsCount   int32 `json:"urls_count"`
	UsersCount  int32 `json:"users_count"`
	ClicksCount int32 `json:"clicks_count"`
}
