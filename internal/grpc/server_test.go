package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tempizhere/linkstat/internal/grpc/proto"
	"github.com/tempizhere/linkstat/internal/repository"
	"github.com/tempizhere/linkstat/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func setupTestServer() (*Server, *service.Service) {
	repo := repository.NewMemoryRepository()
	svc := service.NewService(repo, "http://localhost:8080", "test_secret")
	return NewServer(svc, nil, zap.NewNop()), svc
}

func authCtx() context.Context {
	return context.WithValue(context.Background(), userIDKey, "test_user")
}

func TestServer_CreateShortURL(t *testing.T) {
	srv, _ := setupTestServer()

	resp, err := srv.CreateShortURL(authCtx(), &proto.CreateShortURLRequest{
		OriginalURL: "https://example.com",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.ShortURL)
	assert.Len(t, resp.ShortCode, 6)
	assert.Positive(t, resp.ExpiresAt)
}

func TestServer_CreateShortURL_Unauthenticated(t *testing.T) {
	srv, _ := setupTestServer()

	_, err := srv.CreateShortURL(context.Background(), &proto.CreateShortURLRequest{
		OriginalURL: "https://example.com",
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestServer_CreateShortURL_CustomCodeConflict(t *testing.T) {
	srv, _ := setupTestServer()

	_, err := srv.CreateShortURL(authCtx(), &proto.CreateShortURLRequest{
		OriginalURL: "https://example.com",
		CustomCode:  "promo-2025",
	})
	assert.NoError(t, err)

	_, err = srv.CreateShortURL(authCtx(), &proto.CreateShortURLRequest{
		OriginalURL: "https://another.com",
		CustomCode:  "promo-2025",
	})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestServer_CreateShortURL_InvalidCustomCode(t *testing.T) {
	srv, _ := setupTestServer()

	_, err := srv.CreateShortURL(authCtx(), &proto.CreateShortURLRequest{
		OriginalURL: "https://example.com",
		CustomCode:  "admin",
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_GetOriginalURL_TracksClick(t *testing.T) {
	srv, svc := setupTestServer()

	created, err := srv.CreateShortURL(authCtx(), &proto.CreateShortURLRequest{
		OriginalURL: "https://example.com",
	})
	assert.NoError(t, err)

	resp, err := srv.GetOriginalURL(context.Background(), &proto.GetOriginalURLRequest{
		ShortCode: created.ShortCode,
		Source:    "social",
		Location:  "RU",
	})
	assert.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, "https://example.com", resp.OriginalURL)

	stats, err := svc.GetURLStats(created.ShortCode)
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Clicks)
	assert.Equal(t, "social", stats.ClickData[0].Source)
}

func TestServer_GetOriginalURL_NotFound(t *testing.T) {
	srv, _ := setupTestServer()

	resp, err := srv.GetOriginalURL(context.Background(), &proto.GetOriginalURLRequest{
		ShortCode: "missing",
	})
	assert.NoError(t, err)
	assert.False(t, resp.Found)
	assert.False(t, resp.Expired)
}

func TestServer_ExpandURL_DoesNotTrack(t *testing.T) {
	srv, svc := setupTestServer()

	created, err := srv.CreateShortURL(authCtx(), &proto.CreateShortURLRequest{
		OriginalURL: "https://example.com",
	})
	assert.NoError(t, err)

	resp, err := srv.ExpandURL(context.Background(), &proto.ExpandURLRequest{
		ShortCode: created.ShortCode,
	})
	assert.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, "https://example.com", resp.URL)

	stats, err := svc.GetURLStats(created.ShortCode)
	assert.NoError(t, err)
	assert.Zero(t, stats.Clicks)
}

func TestServer_BatchShorten_KeepsOrder(t *testing.T) {
	srv, _ := setupTestServer()

	resp, err := srv.BatchShorten(authCtx(), &proto.BatchShortenRequest{
		BatchRequests: []*proto.BatchRequest{
			{CorrelationID: "1", OriginalURL: "https://example.com/a"},
			{CorrelationID: "2", OriginalURL: "https://example.com/b"},
			{CorrelationID: "3", OriginalURL: "https://example.com/c"},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, resp.BatchResponses, 3)
	for i, r := range resp.BatchResponses {
		assert.Equal(t, []string{"1", "2", "3"}[i], r.CorrelationID)
	}
}

func TestServer_Ping_NoDatabase(t *testing.T) {
	srv, _ := setupTestServer()

	resp, err := srv.Ping(context.Background(), &proto.PingRequest{})
	assert.NoError(t, err)
	assert.False(t, resp.DatabaseAvailable)
}

func TestServer_GetStats(t *testing.T) {
	srv, _ := setupTestServer()

	_, err := srv.CreateShortURL(authCtx(), &proto.CreateShortURLRequest{
		OriginalURL: "https://example.com",
	})
	assert.NoError(t, err)

	resp, err := srv.GetStats(context.Background(), &proto.GetStatsRequest{})
	assert.NoError(t, err)
	assert.Equal(t, int32(1), resp.UrlsCount)
	assert.Equal(t, int32(1), resp.UsersCount)
	assert.Equal(t, int32(0), resp.ClicksCount)
}
