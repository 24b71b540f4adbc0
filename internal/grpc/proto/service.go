// Package proto содержит интерфейс gRPC сервиса сокращения URL
package proto

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName - полное имя gRPC сервиса
const ServiceName = "linkstat.v1.ShortenerService"

// ShortenerServiceServer представляет интерфейс gRPC сервиса
type ShortenerServiceServer interface {
	CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error)
	GetOriginalURL(ctx context.Context, req *GetOriginalURLRequest) (*GetOriginalURLResponse, error)
	ExpandURL(ctx context.Context, req *ExpandURLRequest) (*ExpandURLResponse, error)
	GetURLStats(ctx context.Context, req *GetURLStatsRequest) (*GetURLStatsResponse, error)
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
	BatchShorten(ctx context.Context, req *BatchShortenRequest) (*BatchShortenResponse, error)
	GetUserURLs(ctx context.Context, req *GetUserURLsRequest) (*GetUserURLsResponse, error)
	CleanupExpired(ctx context.Context, req *CleanupExpiredRequest) (*CleanupExpiredResponse, error)
	GetStats(ctx context.Context, req *GetStatsRequest) (*GetStatsResponse, error)
}

// UnimplementedShortenerServiceServer предоставляет базовую реализацию интерфейса
type UnimplementedShortenerServiceServer struct{}

// CreateShortURL предоставляет базовую реализацию метода создания короткого URL
func (UnimplementedShortenerServiceServer) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	return nil, nil
}

// GetOriginalURL предоставляет базовую реализацию разрешения короткого кода
func (UnimplementedShortenerServiceServer) GetOriginalURL(ctx context.Context, req *GetOriginalURLRequest) (*GetOriginalURLResponse, error) {
	return nil, nil
}

// ExpandURL предоставляет базовую реализацию получения оригинального URL
func (UnimplementedShortenerServiceServer) ExpandURL(ctx context.Context, req *ExpandURLRequest) (*ExpandURLResponse, error) {
	return nil, nil
}

// GetURLStats предоставляет базовую реализацию получения статистики переходов
func (UnimplementedShortenerServiceServer) GetURLStats(ctx context.Context, req *GetURLStatsRequest) (*GetURLStatsResponse, error) {
	return nil, nil
}

// Ping предоставляет базовую реализацию проверки состояния сервиса
func (UnimplementedShortenerServiceServer) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return nil, nil
}

// BatchShorten предоставляет базовую реализацию пакетного сокращения URL
func (UnimplementedShortenerServiceServer) BatchShorten(ctx context.Context, req *BatchShortenRequest) (*BatchShortenResponse, error) {
	return nil, nil
}

// GetUserURLs предоставляет базовую реализацию получения URL пользователя
func (UnimplementedShortenerServiceServer) GetUserURLs(ctx context.Context, req *GetUserURLsRequest) (*GetUserURLsResponse, error) {
	return nil, nil
}

// CleanupExpired предоставляет базовую реализацию удаления истёкших ссылок
func (UnimplementedShortenerServiceServer) CleanupExpired(ctx context.Context, req *CleanupExpiredRequest) (*CleanupExpiredResponse, error) {
	return nil, nil
}

// GetStats предоставляет базовую реализацию получения статистики сервиса
func (UnimplementedShortenerServiceServer) GetStats(ctx context.Context, req *GetStatsRequest) (*GetStatsResponse, error) {
	return nil, nil
}

// RegisterShortenerServiceServer регистрирует реализацию сервиса в gRPC сервере
func RegisterShortenerServiceServer(s *grpc.Server, srv ShortenerServiceServer) {
	s.RegisterService(&shortenerServiceDesc, srv)
}

// unaryHandler собирает обработчик одного метода в форме, ожидаемой
// grpc.MethodDesc, с прокидыванием перехватчиков
func unaryHandler[Req any, Resp any](
	method string,
	call func(srv ShortenerServiceServer, ctx context.Context, req *Req) (*Resp, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ShortenerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ShortenerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// shortenerServiceDesc описывает методы сервиса. Написан вручную в том же
// виде, какой сгенерировал бы protoc.
var shortenerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShortenerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateShortURL",
			Handler: unaryHandler("CreateShortURL", func(srv ShortenerServiceServer, ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
				return srv.CreateShortURL(ctx, req)
			}),
		},
		{
			MethodName: "GetOriginalURL",
			Handler: unaryHandler("GetOriginalURL", func(srv ShortenerServiceServer, ctx context.Context, req *GetOriginalURLRequest) (*GetOriginalURLResponse, error) {
				return srv.GetOriginalURL(ctx, req)
			}),
		},
		{
			MethodName: "ExpandURL",
			Handler: unaryHandler("ExpandURL", func(srv ShortenerServiceServer, ctx context.Context, req *ExpandURLRequest) (*ExpandURLResponse, error) {
				return srv.ExpandURL(ctx, req)
			}),
		},
		{
			MethodName: "GetURLStats",
			Handler: unaryHandler("GetURLStats", func(srv ShortenerServiceServer, ctx context.Context, req *GetURLStatsRequest) (*GetURLStatsResponse, error) {
				return srv.GetURLStats(ctx, req)
			}),
		},
		{
			MethodName: "Ping",
			Handler: unaryHandler("Ping", func(srv ShortenerServiceServer, ctx context.Context, req *PingRequest) (*PingResponse, error) {
				return srv.Ping(ctx, req)
			}),
		},
		{
			MethodName: "BatchShorten",
			Handler: unaryHandler("BatchShorten", func(srv ShortenerServiceServer, ctx context.Context, req *BatchShortenRequest) (*BatchShortenResponse, error) {
				return srv.BatchShorten(ctx, req)
			}),
		},
		{
			MethodName: "GetUserURLs",
			Handler: unaryHandler("GetUserURLs", func(srv ShortenerServiceServer, ctx context.Context, req *GetUserURLsRequest) (*GetUserURLsResponse, error) {
				return srv.GetUserURLs(ctx, req)
			}),
		},
		{
			MethodName: "CleanupExpired",
			Handler: unaryHandler("CleanupExpired", func(srv ShortenerServiceServer, ctx context.Context, req *CleanupExpiredRequest) (*CleanupExpiredResponse, error) {
				return srv.CleanupExpired(ctx, req)
			}),
		},
		{
			MethodName: "GetStats",
			Handler: unaryHandler("GetStats", func(srv ShortenerServiceServer, ctx context.Context, req *GetStatsRequest) (*GetStatsResponse, error) {
				return srv.GetStats(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "linkstat.proto",
}
