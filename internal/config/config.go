package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"

	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

type Config struct {
	App             string        `env:"APP" envDefault:"dev"`
	Addr            string        `env:"ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	PostgresDSN     string        `env:"POSTGRES_DSN"`
	DBPath          string        `env:"DB_PATH"`
	SeedFile        string        `env:"SEED_FILE"`
	WriteKeyHash    string        `env:"LEAGUE_WRITE_KEY_HASH"`
	MetricsEnabled  bool          `env:"METRICS_ENABLED" envDefault:"true"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	LambdaFunction  string        `env:"AWS_LAMBDA_FUNCTION_NAME"`
}

// Load reads .env files outside Lambda and then parses the environment.
func Load() (Config, error) {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") == "" {
		_ = godotenv.Load(".env", ".env.local")
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.App = strings.ToLower(strings.TrimSpace(cfg.App))
	cfg.PostgresDSN = strings.TrimSpace(cfg.PostgresDSN)
	cfg.DBPath = strings.TrimSpace(cfg.DBPath)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.App {
	case EnvDev, EnvProd:
	default:
		return fmt.Errorf("APP must be %q or %q, got %q", EnvDev, EnvProd, c.App)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Backend picks the store: Postgres wins over SQLite, memory is the fallback.
func (c Config) Backend() string {
	switch {
	case c.PostgresDSN != "":
		return BackendPostgres
	case c.DBPath != "":
		return BackendSQLite
	}
	return BackendMemory
}

func (c Config) IsDev() bool {
	return c.App == EnvDev
}

func (c Config) InLambda() bool {
	return c.LambdaFunction != ""
}
