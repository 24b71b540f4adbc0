package config

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит настройки приложения
type Config struct {
	RunAddr          string
	BaseURL          string
	GRPCAddr         string
	FileStoragePath  string
	DatabaseDSN      string
	NATSAddr         string
	JWTSecret        string
	LogLevel         string
	LogEndpoint      string
	LogMaxAttempts   int
	LogBaseDelay     time.Duration
	EnableConsoleLog bool
	TrustedSubnet    string
	DefaultValidity  int
}

// NewConfig создает и возвращает новый объект Config: значения по умолчанию,
// затем флаги командной строки, затем переменные окружения (они имеют приоритет)
func NewConfig() (*Config, error) {
	// .env необязателен, его отсутствие не ошибка
	_ = godotenv.Load()

	cfg := &Config{
		RunAddr:          ":8080",
		BaseURL:          "http://localhost:8080",
		GRPCAddr:         ":3200",
		FileStoragePath:  "internal/storage/storage.json",
		DatabaseDSN:      "",
		NATSAddr:         "",
		JWTSecret:        "default_jwt_secret",
		LogLevel:         "info",
		LogEndpoint:      "",
		LogMaxAttempts:   3,
		LogBaseDelay:     500 * time.Millisecond,
		EnableConsoleLog: true,
		TrustedSubnet:    "",
		DefaultValidity:  30,
	}

	// Регистрируем флаги
	flagRunAddr := flag.String("a", cfg.RunAddr, "address and port to run HTTP server")
	flagBaseURL := flag.String("b", cfg.BaseURL, "base URL for shortened links")
	flagGRPCAddr := flag.String("g", cfg.GRPCAddr, "address and port to run gRPC server")
	flagFilePath := flag.String("f", cfg.FileStoragePath, "path to file for storing URLs")
	flagDatabaseDSN := flag.String("d", cfg.DatabaseDSN, "database DSN for PostgreSQL")
	flagNATSAddr := flag.String("n", cfg.NATSAddr, "NATS address for cross-instance notifications")
	flagJWTSecret := flag.String("j", cfg.JWTSecret, "JWT secret key")
	flagLogLevel := flag.String("l", cfg.LogLevel, "log level")
	flagLogEndpoint := flag.String("log-endpoint", cfg.LogEndpoint, "remote log collector endpoint")
	flagLogMaxAttempts := flag.Int("log-attempts", cfg.LogMaxAttempts, "max delivery attempts per log event")
	flagLogBaseDelay := flag.Duration("log-delay", cfg.LogBaseDelay, "base delay between delivery attempts")
	flagConsoleLog := flag.Bool("console-log", cfg.EnableConsoleLog, "mirror log events to console")
	flagTrustedSubnet := flag.String("t", cfg.TrustedSubnet, "trusted subnet in CIDR notation")
	flagValidity := flag.Int("v", cfg.DefaultValidity, "default URL validity in minutes")
	flag.Parse()

	// Проверяем переменные окружения
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.RunAddr = addr
	} else if *flagRunAddr != "" {
		cfg.RunAddr = *flagRunAddr
	}

	if url := os.Getenv("BASE_URL"); url != "" {
		cfg.BaseURL = url
	} else if *flagBaseURL != "" {
		cfg.BaseURL = *flagBaseURL
	}

	if addr := os.Getenv("GRPC_ADDRESS"); addr != "" {
		cfg.GRPCAddr = addr
	} else if *flagGRPCAddr != "" {
		cfg.GRPCAddr = *flagGRPCAddr
	}

	if path := os.Getenv("FILE_STORAGE_PATH"); path != "" {
		cfg.FileStoragePath = path
	} else if *flagFilePath != "" {
		cfg.FileStoragePath = *flagFilePath
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.DatabaseDSN = dsn
	} else {
		cfg.DatabaseDSN = *flagDatabaseDSN
	}

	if addr := os.Getenv("NATS_ADDRESS"); addr != "" {
		cfg.NATSAddr = addr
	} else {
		cfg.NATSAddr = *flagNATSAddr
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	} else if *flagJWTSecret != "" {
		cfg.JWTSecret = *flagJWTSecret
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	} else if *flagLogLevel != "" {
		cfg.LogLevel = *flagLogLevel
	}

	if endpoint := os.Getenv("LOG_ENDPOINT"); endpoint != "" {
		cfg.LogEndpoint = endpoint
	} else {
		cfg.LogEndpoint = *flagLogEndpoint
	}

	if attempts := os.Getenv("LOG_MAX_ATTEMPTS"); attempts != "" {
		if n, err := strconv.Atoi(attempts); err == nil && n > 0 {
			cfg.LogMaxAttempts = n
		}
	} else if *flagLogMaxAttempts > 0 {
		cfg.LogMaxAttempts = *flagLogMaxAttempts
	}

	if delay := os.Getenv("LOG_BASE_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d > 0 {
			cfg.LogBaseDelay = d
		}
	} else if *flagLogBaseDelay > 0 {
		cfg.LogBaseDelay = *flagLogBaseDelay
	}

	if console := os.Getenv("ENABLE_CONSOLE_LOG"); console != "" {
		if b, err := strconv.ParseBool(console); err == nil {
			cfg.EnableConsoleLog = b
		}
	} else {
		cfg.EnableConsoleLog = *flagConsoleLog
	}

	if subnet := os.Getenv("TRUSTED_SUBNET"); subnet != "" {
		cfg.TrustedSubnet = subnet
	} else {
		cfg.TrustedSubnet = *flagTrustedSubnet
	}

	if validity := os.Getenv("DEFAULT_VALIDITY"); validity != "" {
		if n, err := strconv.Atoi(validity); err == nil && n > 0 {
			cfg.DefaultValidity = n
		}
	} else if *flagValidity > 0 {
		cfg.DefaultValidity = *flagValidity
	}

	// Валидация значений
	if !strings.Contains(cfg.RunAddr, ":") {
		cfg.RunAddr = ":" + cfg.RunAddr
	}
	if !strings.Contains(cfg.GRPCAddr, ":") {
		cfg.GRPCAddr = ":" + cfg.GRPCAddr
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		cfg.BaseURL = "http://" + cfg.BaseURL
	}
	if cfg.FileStoragePath != "" {
		// Создаём директорию для файла, если она не существует
		dir := filepath.Dir(cfg.FileStoragePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
