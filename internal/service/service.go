// Package service содержит бизнес-логику сервиса сокращения URL.
package service

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tempizhere/linkstat/internal/models"
	"github.com/tempizhere/linkstat/internal/repository"
)

// Ошибки сервиса
var (
	ErrEmptyURL        = errors.New("empty URL")
	ErrInvalidURL      = errors.New("invalid URL")
	ErrURLExpired      = errors.New("short URL expired")
	ErrEmptyBatch      = errors.New("empty batch")
	ErrDuplicateCorrID = errors.New("duplicate correlation_id")
)

// DefaultValidityMinutes - срок действия ссылки по умолчанию
const DefaultValidityMinutes = 30

// Service реализует логику работы с короткими ссылками
type Service struct {
	repo            repository.Repository
	baseURL         string
	jwtSecret       string
	defaultValidity int
	alphabet        string
	codeLength      int
	attempts        int
	now             func() time.Time
}

// NewService создаёт новый экземпляр Service
func NewService(repo repository.Repository, baseURL, jwtSecret string) *Service {
	return &Service{
		repo:            repo,
		baseURL:         baseURL,
		jwtSecret:       jwtSecret,
		defaultValidity: DefaultValidityMinutes,
		alphabet:        codeAlphabet,
		codeLength:      codeLength,
		attempts:        generateAttempts,
		now:             time.Now,
	}
}

// SetDefaultValidity задаёт срок действия ссылки по умолчанию в минутах
func (s *Service) SetDefaultValidity(minutes int) {
	if minutes > 0 {
		s.defaultValidity = minutes
	}
}

// CreateShortURL создаёт короткую ссылку. Пустой customCode означает
// генерацию случайного кода, validity <= 0 - срок действия по умолчанию.
func (s *Service) CreateShortURL(originalURL, customCode string, validity int, userID string) (models.ShortURL, error) {
	if originalURL == "" {
		return models.ShortURL{}, ErrEmptyURL
	}
	parsed, err := url.ParseRequestURI(originalURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return models.ShortURL{}, ErrInvalidURL
	}
	if validity <= 0 {
		validity = s.defaultValidity
	}

	code := customCode
	isCustom := customCode != ""
	if isCustom {
		if result := s.ValidateShortCode(customCode); !result.Valid {
			return models.ShortURL{}, &ValidationError{Result: result}
		}
	} else {
		code, err = s.GenerateShortCode(s.usedCodes())
		if err != nil {
			return models.ShortURL{}, err
		}
	}

	createdAt := s.now()
	u := models.ShortURL{
		ID:          uuid.NewString(),
		OriginalURL: originalURL,
		ShortCode:   code,
		ShortURL:    s.shortURLFor(code),
		Validity:    validity,
		IsCustom:    isCustom,
		UserID:      userID,
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(time.Duration(validity) * time.Minute),
	}

	// Уникальность кода перепроверяется внутри Save: код, занятый другим
	// процессом между генерацией и сохранением, вернёт ErrCodeTaken
	if err := s.repo.Save(u); err != nil {
		return models.ShortURL{}, err
	}
	return u, nil
}

// ResolveAndTrack возвращает оригинальный URL по коду и фиксирует переход.
// Истёкшие ссылки не разрешаются.
func (s *Service) ResolveAndTrack(code string, click models.ClickData) (string, error) {
	u, ok := s.repo.Get(code)
	if !ok {
		return "", repository.ErrNotFound
	}
	if u.IsExpired(s.now()) {
		return "", ErrURLExpired
	}

	if click.ID == "" {
		click.ID = uuid.NewString()
	}
	if click.Timestamp.IsZero() {
		click.Timestamp = s.now()
	}
	if err := s.repo.AppendClick(code, click); err != nil {
		return "", err
	}
	return u.OriginalURL, nil
}

// Get возвращает ссылку по коду без фиксации перехода
func (s *Service) Get(code string) (models.ShortURL, bool) {
	return s.repo.Get(code)
}

// GetURLStats возвращает статистику по одной ссылке, включая истёкшую
func (s *Service) GetURLStats(code string) (models.URLStatsResponse, error) {
	u, ok := s.repo.Get(code)
	if !ok {
		return models.URLStatsResponse{}, repository.ErrNotFound
	}
	return models.URLStatsResponse{
		ShortCode:   u.ShortCode,
		OriginalURL: u.OriginalURL,
		CreatedAt:   u.CreatedAt,
		ExpiresAt:   u.ExpiresAt,
		Clicks:      u.Clicks,
		ClickData:   u.ClickData,
	}, nil
}

// GetUserURLs возвращает активные ссылки пользователя
func (s *Service) GetUserURLs(userID string) []models.ShortURL {
	return s.repo.GetByUserID(userID, s.now())
}

// BatchShorten создаёт короткие ссылки для списка запросов. Создание
// выполняется независимыми горутинами, ответы собираются в порядке запросов.
func (s *Service) BatchShorten(reqs []models.BatchRequest, userID string) ([]models.BatchResponse, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyBatch
	}
	corrIDs := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		if _, exists := corrIDs[req.CorrelationID]; exists {
			return nil, ErrDuplicateCorrID
		}
		corrIDs[req.CorrelationID] = struct{}{}
	}

	resp := make([]models.BatchResponse, len(reqs))
	errs := make([]error, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req models.BatchRequest) {
			defer wg.Done()
			u, err := s.CreateShortURL(req.OriginalURL, "", req.Validity, userID)
			if err != nil {
				errs[i] = err
				return
			}
			resp[i] = models.BatchResponse{
				CorrelationID: req.CorrelationID,
				ShortURL:      u.ShortURL,
			}
		}(i, req)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// CleanupExpired удаляет истёкшие ссылки пользователя
func (s *Service) CleanupExpired(userID string) (int, error) {
	return s.repo.DeleteExpired(userID, s.now())
}

// GetStats возвращает сводную статистику сервиса
func (s *Service) GetStats() models.StatsResponse {
	urls, users, clicks := s.repo.Stats()
	return models.StatsResponse{URLs: urls, Users: users, Clicks: clicks}
}

// GetBaseURL возвращает базовый адрес коротких ссылок
func (s *Service) GetBaseURL() string {
	return s.baseURL
}

// ExtractCodeFromShortURL извлекает код из короткой ссылки
func (s *Service) ExtractCodeFromShortURL(shortURL string) string {
	return shortURL[strings.LastIndex(shortURL, "/")+1:]
}

// usedCodes собирает множество занятых кодов по всей коллекции
func (s *Service) usedCodes() map[string]struct{} {
	all := s.repo.GetAll()
	used := make(map[string]struct{}, len(all))
	for _, u := range all {
		used[u.ShortCode] = struct{}{}
	}
	return used
}

// shortURLFor составляет полный короткий адрес для кода
func (s *Service) shortURLFor(code string) string {
	return strings.TrimRight(s.baseURL, "/") + "/" + code
}
