package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tempizhere/linkstat/internal/grpc/proto"
	"github.com/tempizhere/linkstat/internal/repository"
	"github.com/tempizhere/linkstat/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

// startBufconnServer поднимает gRPC сервер на bufconn и возвращает
// клиентское соединение к нему
func startBufconnServer(t *testing.T, svc *service.Service) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(
		grpc.ForceServerCodec(proto.Codec()),
		grpc.ChainUnaryInterceptor(AuthInterceptor(svc, zap.NewNop())),
	)
	proto.RegisterShortenerServiceServer(srv, NewServer(svc, nil, zap.NewNop()))

	go func() {
		if err := srv.Serve(lis); err != nil {
			t.Errorf("serve: %v", err)
		}
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(proto.Codec())),
	)
	assert.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRegisteredService_PingOverWire(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := service.NewService(repo, "http://localhost:8080", "test_secret")
	conn := startBufconnServer(t, svc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var resp proto.PingResponse
	err := conn.Invoke(ctx, "/"+proto.ServiceName+"/Ping", &proto.PingRequest{}, &resp)
	assert.NoError(t, err)
	assert.False(t, resp.DatabaseAvailable)
}

func TestRegisteredService_CreateAndExpandOverWire(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := service.NewService(repo, "http://localhost:8080", "test_secret")
	conn := startBufconnServer(t, svc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Аутентификация по метаданным: без токена выдаётся новая личность
	ctx = metadata.AppendToOutgoingContext(ctx, "client", "test")

	var created proto.CreateShortURLResponse
	err := conn.Invoke(ctx, "/"+proto.ServiceName+"/CreateShortURL",
		&proto.CreateShortURLRequest{OriginalURL: "https://example.com"}, &created)
	assert.NoError(t, err)
	assert.Len(t, created.ShortCode, 6)

	var expanded proto.ExpandURLResponse
	err = conn.Invoke(ctx, "/"+proto.ServiceName+"/ExpandURL",
		&proto.ExpandURLRequest{ShortCode: created.ShortCode}, &expanded)
	assert.NoError(t, err)
	assert.True(t, expanded.Found)
	assert.Equal(t, "https://example.com", expanded.URL)
}
