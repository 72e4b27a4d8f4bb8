package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	// Client side.
	APIBaseURL  string        `env:"API_BASE_URL" default:"http://localhost:18080"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" default:"15s"`

	StoreMode               string `env:"STORE_MODE" default:"file"`
	StateFile               string `env:"STATE_FILE" default:".shopadmin/state.json"`
	DatabaseURL             string `env:"DATABASE_URL"`
	RedisURL                string `env:"REDIS_URL"`
	CredentialEncryptionKey string `env:"CREDENTIAL_ENCRYPTION_KEY"`

	// Development backend.
	ListenAddr      string        `env:"LISTEN_ADDR" default:":18080"`
	MetricsAddr     string        `env:"METRICS_ADDR"`
	AdminUsername   string        `env:"ADMIN_USERNAME" default:"admin"`
	AdminPassword   string        `env:"ADMIN_PASSWORD" default:"change-me"`
	JWTSecret       string        `env:"JWT_SECRET" default:"change-this-secret"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" default:"168h"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	return LoadFrom(".env")
}

func LoadFrom(dotenvPath string) (Config, error) {
	if err := godotenv.Load(dotenvPath); err != nil {
		slog.Debug("no .env file loaded", "path", dotenvPath, "error", err)
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.StoreMode {
	case StoreMemory, StoreFile:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_MODE=postgres")
		}
	case StoreRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is required when STORE_MODE=redis")
		}
	default:
		return fmt.Errorf("STORE_MODE must be one of memory, file, postgres, redis; got %q", cfg.StoreMode)
	}
	if cfg.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if cfg.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL and REFRESH_TOKEN_TTL must be positive")
	}
	return nil
}
