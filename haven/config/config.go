package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8000"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath     string `env:"DB_PATH" envDefault:"chatbot.db"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Staff routes are open when no secret is configured.
	JWTSecret string `env:"JWT_SECRET"`

	LogDir         string        `env:"LOG_DIR" envDefault:"./logs"`
	CatalogPath    string        `env:"CATALOG_PATH"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`

	MinIOEndpoint  string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY"`
	MinIOBucket    string `env:"MINIO_BUCKET" envDefault:"transcripts"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, cfg.DBDriver)
	}
	return cfg, nil
}

func (c Config) StaffAuthEnabled() bool {
	return c.JWTSecret != ""
}

func (c Config) ExportEnabled() bool {
	return c.MinIOEndpoint != ""
}
