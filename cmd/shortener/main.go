package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tempizhere/linkstat/internal/app"
	"github.com/tempizhere/linkstat/internal/config"
	grpcserver "github.com/tempizhere/linkstat/internal/grpc"
	"github.com/tempizhere/linkstat/internal/grpc/proto"
	"github.com/tempizhere/linkstat/internal/log"
	"github.com/tempizhere/linkstat/internal/middleware"
	"github.com/tempizhere/linkstat/internal/models"
	"github.com/tempizhere/linkstat/internal/notify"
	"github.com/tempizhere/linkstat/internal/repository"
	"github.com/tempizhere/linkstat/internal/service"
	"github.com/tempizhere/linkstat/internal/store"
	"github.com/tempizhere/linkstat/internal/telemetry"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// cookieTTL - срок действия авторизационной cookie
const cookieTTL = 24 * time.Hour

func main() {
	// Получаем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	logger := log.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	// Диспетчер телеметрии с повторными попытками доставки
	dispatcher := telemetry.NewDispatcher(telemetry.Config{
		Endpoint:    cfg.LogEndpoint,
		MaxAttempts: cfg.LogMaxAttempts,
		BaseDelay:   cfg.LogBaseDelay,
		Console:     consoleLogger(cfg, logger),
	})

	// Шина уведомлений: NATS для нескольких экземпляров, иначе внутри процесса
	var bus notify.Bus
	if cfg.NATSAddr != "" {
		natsBus, err := notify.NewNATSBus(cfg.NATSAddr)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsBus.Close()
		bus = natsBus
		logger.Info("Connected to NATS", zap.String("addr", cfg.NATSAddr))
	} else {
		bus = notify.NewMemoryBus()
	}

	// Хранилище: PostgreSQL при наличии DSN, иначе файл
	db, err := store.NewDB(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	var slot store.Slot
	if db != nil {
		slot = store.NewPostgresSlot(db, "urls")
		logger.Info("Using PostgreSQL storage")
	} else {
		fileSlot, err := store.NewFileSlot(cfg.FileStoragePath)
		if err != nil {
			logger.Fatal("Failed to open storage file", zap.Error(err))
		}
		slot = fileSlot
		logger.Info("Using file storage", zap.String("path", cfg.FileStoragePath))
	}

	repo, err := repository.NewSyncedRepository(slot, bus, logger)
	if err != nil {
		logger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	svc := service.NewService(repo, cfg.BaseURL, cfg.JWTSecret)
	svc.SetDefaultValidity(cfg.DefaultValidity)
	appInstance := app.NewApp(svc, db, dispatcher)

	// Создаём маршрутизатор
	r := chi.NewRouter()
	r.Use(middleware.LoggingMiddleware(logger, dispatcher))
	r.Use(middleware.GzipMiddleware)
	r.Use(middleware.AuthMiddleware(svc, cookieTTL, logger))

	// Регистрируем обработчики
	r.Post("/", appInstance.HandlePostURL)
	r.Get("/{code}", appInstance.HandleGetURL)
	r.Post("/api/shorten", appInstance.HandleJSONShorten)
	r.Post("/api/shorten/batch", appInstance.HandleBatchShorten)
	r.Get("/api/expand/{code}", appInstance.HandleJSONExpand)
	r.Get("/api/urls/{code}/stats", appInstance.HandleURLStats)
	r.Get("/api/user/urls", appInstance.HandleUserURLs)
	r.Delete("/api/user/expired", appInstance.HandleCleanupExpired)
	r.Get("/ping", appInstance.HandlePing)
	r.Route("/api/internal", func(r chi.Router) {
		r.Use(middleware.TrustedSubnetMiddleware(cfg.TrustedSubnet, logger))
		r.Get("/stats", appInstance.HandleStats)
	})

	httpServer := &http.Server{
		Addr:    cfg.RunAddr,
		Handler: r,
	}

	// gRPC сервер с интерцепторами; сообщения сервиса описаны вручную
	// и кодируются JSON-кодеком
	grpcSrv := grpc.NewServer(
		grpc.ForceServerCodec(proto.Codec()),
		grpc.ChainUnaryInterceptor(
			grpcserver.LoggingInterceptor(logger),
			grpcserver.AuthInterceptor(svc, logger),
			grpcserver.TrustedSubnetInterceptor(cfg.TrustedSubnet, logger),
		),
	)
	proto.RegisterShortenerServiceServer(grpcSrv, grpcserver.NewServer(svc, db, logger))

	go func() {
		listener, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatal("Failed to listen gRPC", zap.Error(err))
		}
		logger.Info("Starting gRPC server", zap.String("addr", cfg.GRPCAddr))
		if err := grpcSrv.Serve(listener); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.RunAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	dispatcher.Info(models.CategoryState, "service started", map[string]interface{}{
		"addr": cfg.RunAddr,
	})

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown failed", zap.Error(err))
	}
	grpcSrv.GracefulStop()
}

// consoleLogger возвращает логгер для зеркалирования событий телеметрии
func consoleLogger(cfg *config.Config, logger *zap.Logger) *zap.Logger {
	if !cfg.EnableConsoleLog {
		return nil
	}
	return logger
}
