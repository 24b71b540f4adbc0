package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tempizhere/linkstat/internal/models"
	"github.com/tempizhere/linkstat/internal/repository"
)

const testUserID = "test_user"

func newTestService() *Service {
	return NewService(repository.NewMemoryRepository(), "http://localhost:8080", "secret")
}

func TestCreateShortURL(t *testing.T) {
	svc := newTestService()

	u, err := svc.CreateShortURL("https://example.com", "", 0, testUserID)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.ShortURL, "http://localhost:8080/"), "Short URL should start with baseURL")
	assert.Len(t, u.ShortCode, codeLength)
	assert.False(t, u.IsCustom)
	assert.Equal(t, DefaultValidityMinutes, u.Validity)
	assert.Equal(t, testUserID, u.UserID)
	assert.NotEmpty(t, u.ID)
	assert.Zero(t, u.Clicks)
}

func TestCreateShortURL_ExpirySetExactly(t *testing.T) {
	svc := newTestService()

	// Фиксируем часы сервиса
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return createdAt }

	u, err := svc.CreateShortURL("https://example.com", "", 30, testUserID)
	assert.NoError(t, err)
	assert.Equal(t, createdAt, u.CreatedAt)
	assert.Equal(t, createdAt.Add(30*time.Minute), u.ExpiresAt, "expiresAt must equal createdAt + validity exactly")

	// До истечения срока ссылка активна
	svc.now = func() time.Time { return createdAt.Add(29 * time.Minute) }
	assert.Len(t, svc.GetUserURLs(testUserID), 1)

	// После истечения срока ссылка исключается из активных представлений
	svc.now = func() time.Time { return createdAt.Add(30 * time.Minute) }
	assert.Empty(t, svc.GetUserURLs(testUserID))
}

func TestCreateShortURL_InvalidURL(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"empty URL", "", ErrEmptyURL},
		{"no scheme", "example.com", ErrInvalidURL},
		{"unsupported scheme", "ftp://example.com", ErrInvalidURL},
		{"garbage", "not a url", ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateShortURL(tt.url, "", 0, testUserID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateShortURL_CustomCode(t *testing.T) {
	svc := newTestService()

	u, err := svc.CreateShortURL("https://example.com", "my-code_1", 0, testUserID)
	assert.NoError(t, err)
	assert.Equal(t, "my-code_1", u.ShortCode)
	assert.True(t, u.IsCustom)

	// Занятый код не переиспользуется
	_, err = svc.CreateShortURL("https://another.com", "my-code_1", 0, testUserID)
	assert.ErrorIs(t, err, repository.ErrCodeTaken)
}

func TestCreateShortURL_InvalidCustomCode(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateShortURL("https://example.com", "admin", 0, testUserID)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.False(t, validationErr.Result.Valid)
	assert.NotEmpty(t, validationErr.Result.Reasons)
}

func TestResolveAndTrack(t *testing.T) {
	svc := newTestService()

	u, err := svc.CreateShortURL("https://example.com", "", 0, testUserID)
	assert.NoError(t, err)

	original, err := svc.ResolveAndTrack(u.ShortCode, models.ClickData{Source: "direct", Location: "RU"})
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com", original)

	// Переход зафиксирован: счётчик и последовательность согласованы
	stats, err := svc.GetURLStats(u.ShortCode)
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Clicks)
	assert.Len(t, stats.ClickData, 1)
	assert.Equal(t, "direct", stats.ClickData[0].Source)
	assert.NotEmpty(t, stats.ClickData[0].ID, "Click should get an identifier")
	assert.False(t, stats.ClickData[0].Timestamp.IsZero())
}

func TestResolveAndTrack_NotFound(t *testing.T) {
	svc := newTestService()

	_, err := svc.ResolveAndTrack("missing", models.ClickData{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResolveAndTrack_Expired(t *testing.T) {
	svc := newTestService()

	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return createdAt }
	u, err := svc.CreateShortURL("https://example.com", "", 30, testUserID)
	assert.NoError(t, err)

	svc.now = func() time.Time { return createdAt.Add(31 * time.Minute) }
	_, err = svc.ResolveAndTrack(u.ShortCode, models.ClickData{})
	assert.ErrorIs(t, err, ErrURLExpired)

	// Переход по истёкшей ссылке не фиксируется
	stats, err := svc.GetURLStats(u.ShortCode)
	assert.NoError(t, err)
	assert.Zero(t, stats.Clicks)
}

func TestBatchShorten(t *testing.T) {
	svc := newTestService()

	reqs := []models.BatchRequest{
		{CorrelationID: "1", OriginalURL: "https://example.com/a"},
		{CorrelationID: "2", OriginalURL: "https://example.com/b"},
		{CorrelationID: "3", OriginalURL: "https://example.com/c"},
	}
	resp, err := svc.BatchShorten(reqs, testUserID)
	assert.NoError(t, err)
	assert.Len(t, resp, 3)

	// Ответы собраны в порядке запросов независимо от порядка завершения
	for i, r := range resp {
		assert.Equal(t, reqs[i].CorrelationID, r.CorrelationID)
		assert.True(t, strings.HasPrefix(r.ShortURL, "http://localhost:8080/"))
	}
}

func TestBatchShorten_Errors(t *testing.T) {
	svc := newTestService()

	_, err := svc.BatchShorten(nil, testUserID)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = svc.BatchShorten([]models.BatchRequest{
		{CorrelationID: "1", OriginalURL: "https://example.com/a"},
		{CorrelationID: "1", OriginalURL: "https://example.com/b"},
	}, testUserID)
	assert.ErrorIs(t, err, ErrDuplicateCorrID)

	_, err = svc.BatchShorten([]models.BatchRequest{
		{CorrelationID: "1", OriginalURL: "not a url"},
	}, testUserID)
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestCleanupExpired(t *testing.T) {
	svc := newTestService()

	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return createdAt }
	_, err := svc.CreateShortURL("https://example.com/a", "", 30, testUserID)
	assert.NoError(t, err)
	_, err = svc.CreateShortURL("https://example.com/b", "", 60, testUserID)
	assert.NoError(t, err)

	svc.now = func() time.Time { return createdAt.Add(45 * time.Minute) }
	removed, err := svc.CleanupExpired(testUserID)
	assert.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Len(t, svc.GetUserURLs(testUserID), 1)
}

func TestGetStats(t *testing.T) {
	svc := newTestService()

	u1, err := svc.CreateShortURL("https://example.com/a", "", 0, "user1")
	assert.NoError(t, err)
	_, err = svc.CreateShortURL("https://example.com/b", "", 0, "user2")
	assert.NoError(t, err)
	_, err = svc.ResolveAndTrack(u1.ShortCode, models.ClickData{Source: "direct"})
	assert.NoError(t, err)

	stats := svc.GetStats()
	assert.Equal(t, 2, stats.URLs)
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 1, stats.Clicks)
}

func TestJWT_RoundTrip(t *testing.T) {
	svc := newTestService()

	userID, err := svc.GenerateUserID()
	assert.NoError(t, err)
	assert.NotEmpty(t, userID)

	token, err := svc.GenerateJWT(userID)
	assert.NoError(t, err)

	parsed, err := svc.ParseJWT(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestJWT_InvalidToken(t *testing.T) {
	svc := newTestService()

	_, err := svc.ParseJWT("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Токен, подписанный другим секретом, отклоняется
	other := NewService(repository.NewMemoryRepository(), "http://localhost:8080", "other_secret")
	token, err := other.GenerateJWT("user1")
	assert.NoError(t, err)
	_, err = svc.ParseJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractCodeFromShortURL(t *testing.T) {
	svc := newTestService()
	assert.Equal(t, "abc123", svc.ExtractCodeFromShortURL("http://localhost:8080/abc123"))
}
