// Package grpc содержит реализацию gRPC сервера для сервиса сокращения URL
package grpc

import (
	"context"
	"errors"

	"github.com/tempizhere/linkstat/internal/grpc/proto"
	"github.com/tempizhere/linkstat/internal/models"
	"github.com/tempizhere/linkstat/internal/repository"
	"github.com/tempizhere/linkstat/internal/service"
	"github.com/tempizhere/linkstat/internal/store"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server реализует gRPC сервер для сервиса сокращения URL
type Server struct {
	proto.UnimplementedShortenerServiceServer
	svc    *service.Service
	db     store.Database
	logger *zap.Logger
}

// NewServer создаёт новый gRPC сервер
func NewServer(svc *service.Service, db store.Database, logger *zap.Logger) *Server {
	return &Server{
		svc:    svc,
		db:     db,
		logger: logger,
	}
}

// CreateShortURL обрабатывает создание короткого URL
func (s *Server) CreateShortURL(ctx context.Context, req *proto.CreateShortURLRequest) (*proto.CreateShortURLResponse, error) {
	if req.OriginalURL == "" {
		return nil, status.Error(codes.InvalidArgument, "original URL is required")
	}

	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.svc.CreateShortURL(req.OriginalURL, req.CustomCode, int(req.Validity), userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &proto.CreateShortURLResponse{
		ShortURL:  u.ShortURL,
		ShortCode: u.ShortCode,
		ExpiresAt: u.ExpiresAt.Unix(),
	}, nil
}

// GetOriginalURL разрешает короткий код, фиксирует переход и возвращает оригинальный URL
func (s *Server) GetOriginalURL(ctx context.Context, req *proto.GetOriginalURLRequest) (*proto.GetOriginalURLResponse, error) {
	if req.ShortCode == "" {
		return nil, status.Error(codes.InvalidArgument, "short code is required")
	}

	click := models.ClickData{
		Source:    req.Source,
		Location:  req.Location,
		UserAgent: req.UserAgent,
	}
	if click.Source == "" {
		click.Source = "direct"
	}
	if click.Location == "" {
		click.Location = "unknown"
	}

	originalURL, err := s.svc.ResolveAndTrack(req.ShortCode, click)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return &proto.GetOriginalURLResponse{Found: false}, nil
		case errors.Is(err, service.ErrURLExpired):
			return &proto.GetOriginalURLResponse{Found: false, Expired: true}, nil
		}
		return nil, s.mapError(err)
	}

	return &proto.GetOriginalURLResponse{
		OriginalURL: originalURL,
		Found:       true,
	}, nil
}

// ExpandURL возвращает оригинальный URL без фиксации перехода
func (s *Server) ExpandURL(ctx context.Context, req *proto.ExpandURLRequest) (*proto.ExpandURLResponse, error) {
	if req.ShortCode == "" {
		return nil, status.Error(codes.InvalidArgument, "short code is required")
	}

	u, exists := s.svc.Get(req.ShortCode)
	if !exists {
		return &proto.ExpandURLResponse{Found: false}, nil
	}

	return &proto.ExpandURLResponse{
		URL:   u.OriginalURL,
		Found: true,
	}, nil
}

// GetURLStats возвращает статистику переходов по короткому коду
func (s *Server) GetURLStats(ctx context.Context, req *proto.GetURLStatsRequest) (*proto.GetURLStatsResponse, error) {
	if req.ShortCode == "" {
		return nil, status.Error(codes.InvalidArgument, "short code is required")
	}

	stats, err := s.svc.GetURLStats(req.ShortCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "URL not found")
		}
		return nil, s.mapError(err)
	}

	clickData := make([]*proto.ClickInfo, len(stats.ClickData))
	for i, c := range stats.ClickData {
		clickData[i] = &proto.ClickInfo{
			Timestamp: c.Timestamp.Unix(),
			Source:    c.Source,
			Location:  c.Location,
			UserAgent: c.UserAgent,
		}
	}

	return &proto.GetURLStatsResponse{
		ShortCode: stats.ShortCode,
		Clicks:    int32(stats.Clicks),
		ClickData: clickData,
	}, nil
}

// Ping проверяет состояние сервиса
func (s *Server) Ping(ctx context.Context, req *proto.PingRequest) (*proto.PingResponse, error) {
	if s.db == nil {
		return &proto.PingResponse{DatabaseAvailable: false}, nil
	}

	err := s.db.Ping()
	return &proto.PingResponse{
		DatabaseAvailable: err == nil,
	}, nil
}

// BatchShorten обрабатывает пакетное сокращение URL
func (s *Server) BatchShorten(ctx context.Context, req *proto.BatchShortenRequest) (*proto.BatchShortenResponse, error) {
	if len(req.BatchRequests) == 0 {
		return nil, status.Error(codes.InvalidArgument, "batch requests cannot be empty")
	}

	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	requests := make([]models.BatchRequest, len(req.BatchRequests))
	for i, r := range req.BatchRequests {
		requests[i] = models.BatchRequest{
			CorrelationID: r.CorrelationID,
			OriginalURL:   r.OriginalURL,
		}
	}

	responses, err := s.svc.BatchShorten(requests, userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	protoResponses := make([]*proto.BatchResponse, len(responses))
	for i, r := range responses {
		protoResponses[i] = &proto.BatchResponse{
			CorrelationID: r.CorrelationID,
			ShortURL:      r.ShortURL,
		}
	}

	return &proto.BatchShortenResponse{BatchResponses: protoResponses}, nil
}

// GetUserURLs возвращает активные URL пользователя
func (s *Server) GetUserURLs(ctx context.Context, req *proto.GetUserURLsRequest) (*proto.GetUserURLsResponse, error) {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	urls := s.svc.GetUserURLs(userID)
	if len(urls) == 0 {
		return &proto.GetUserURLsResponse{UserUrls: []*proto.ShortURLResponse{}}, nil
	}

	protoURLs := make([]*proto.ShortURLResponse, len(urls))
	for i, u := range urls {
		protoURLs[i] = &proto.ShortURLResponse{
			ShortURL:    u.ShortURL,
			OriginalURL: u.OriginalURL,
			ExpiresAt:   u.ExpiresAt.Unix(),
			Clicks:      int32(u.Clicks),
		}
	}

	return &proto.GetUserURLsResponse{UserUrls: protoURLs}, nil
}

// CleanupExpired удаляет истёкшие ссылки пользователя
func (s *Server) CleanupExpired(ctx context.Context, req *proto.CleanupExpiredRequest) (*proto.CleanupExpiredResponse, error) {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	removed, err := s.svc.CleanupExpired(userID)
	if err != nil {
		s.logger.Error("Failed to cleanup expired URLs", zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to cleanup expired URLs")
	}

	return &proto.CleanupExpiredResponse{Removed: int32(removed)}, nil
}

// GetStats возвращает статистику сервиса
func (s *Server) GetStats(ctx context.Context, req *proto.GetStatsRequest) (*proto.GetStatsResponse, error) {
	stats := s.svc.GetStats()

	return &proto.GetStatsResponse{
		UrlsCount:   int32(stats.URLs),
		UsersCount:  int32(stats.Users),
		ClicksCount: int32(stats.Clicks),
	}, nil
}

// getUserIDFromContext извлекает UserID из контекста
func getUserIDFromContext(ctx context.Context) (string, error) {
	if userID, ok := ctx.Value(userIDKey).(string); ok && userID != "" {
		return userID, nil
	}
	return "", status.Error(codes.Unauthenticated, "user not authenticated")
}

// mapError преобразует ошибки бизнес-логики в gRPC статусы
func (s *Server) mapError(err error) error {
	if err == nil {
		return nil
	}

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return status.Error(codes.InvalidArgument, validationErr.Error())
	case errors.Is(err, repository.ErrCodeTaken):
		return status.Error(codes.AlreadyExists, "short code already taken")
	case errors.Is(err, repository.ErrNotFound):
		return status.Error(codes.NotFound, "URL not found")
	case errors.Is(err, service.ErrEmptyURL):
		return status.Error(codes.InvalidArgument, "empty URL provided")
	case errors.Is(err, service.ErrInvalidURL):
		return status.Error(codes.InvalidArgument, "invalid URL format")
	case errors.Is(err, service.ErrEmptyBatch):
		return status.Error(codes.InvalidArgument, "empty batch")
	case errors.Is(err, service.ErrDuplicateCorrID):
		return status.Error(codes.InvalidArgument, "duplicate correlation ID")
	case errors.Is(err, service.ErrGenerationExhausted):
		s.logger.Error("Short code generation exhausted")
		return status.Error(codes.ResourceExhausted, "failed to generate unique short code")
	default:
		s.logger.Error("Unexpected error", zap.Error(err))
		return status.Error(codes.Internal, "internal server error")
	}
}
