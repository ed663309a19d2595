package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Env             string
	LogLevel        string
	HTTPAddr        string
	DBType          string
	DBDSN           string
	SQLitePath      string
	SeedFixtures    bool
	ShutdownTimeout time.Duration
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads the configuration once per process. An invalid configuration panics.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		c, err := FromEnv()
		if err != nil {
			panic("Invalid config: " + err.Error())
		}
		cfg = c
	})
	return cfg
}

// FromEnv builds and validates a Config from the current environment.
func FromEnv() (*Config, error) {
	seed, err := strconv.ParseBool(getEnv("SEED_FIXTURES", "true"))
	if err != nil {
		return nil, fmt.Errorf("SEED_FIXTURES: %w", err)
	}
	timeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	c := &Config{
		Env:             getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":5000"),
		DBType:          getEnv("STORAGE_BACKEND", BackendSQLite),
		DBDSN:           getEnv("POSTGRES_DSN", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "diary.db"),
		SeedFixtures:    seed,
		ShutdownTimeout: timeout,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.DBType {
	case BackendPostgres:
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of: %s, %s", BackendSQLite, BackendPostgres)
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
