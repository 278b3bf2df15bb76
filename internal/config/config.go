package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/player-generator-go/internal/constants"
)

// Training sources.
const (
	SourceFile     = "file"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

type Config struct {
	Server     ServerConfig
	Training   TrainingConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Generation GenerationConfig
	Crawl      CrawlConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Addr string
}

type TrainingConfig struct {
	Source     string
	Dir        string
	File       string
	SQLitePath string
	RunID      string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	Size int
	TTL  time.Duration
}

type GenerationConfig struct {
	MinProfileLength  int
	MaxBiographyLines int
	// ExtraDenylist is added to sanitizer.DefaultDenylist.
	ExtraDenylist     []string
}

type CrawlConfig struct {
	BaseURL       string
	UserAgent     string
	Concurrency   int
	Delay         time.Duration
	Timeout       time.Duration
	Nationalities []int
	OutputDir     string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	trainingDir := getEnv("TRAINING_DIR", "data")

	cfg := &Config{
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", constants.ServerConfig.Addr),
		},
		Training: TrainingConfig{
			Source:     strings.ToLower(getEnv("TRAINING_SOURCE", SourceFile)),
			Dir:        trainingDir,
			File:       getEnv("TRAINING_FILE", ""),
			SQLitePath: getEnv("SQLITE_PATH", "data/playergen.db"),
			RunID:      getEnv("TRAINING_RUN_ID", ""),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "playergen"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "playergen"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Size: getEnvInt("CACHE_SIZE", constants.CacheConfig.MemoryEntries),
			TTL:  time.Duration(getEnvInt("PROFILE_CACHE_TTL_MINUTES", int(constants.CacheTTL.Profile/time.Minute))) * time.Minute,
		},
		Generation: GenerationConfig{
			MinProfileLength:  getEnvInt("MIN_PROFILE_LENGTH", constants.GenerationConfig.MinProfileLength),
			MaxBiographyLines: getEnvInt("MAX_BIOGRAPHY_LINES", constants.GenerationConfig.MaxBiographyLines),
			ExtraDenylist:     parseCommaSeparated(getEnv("SANITIZER_EXTRA_WORDS", "")),
		},
		Crawl: CrawlConfig{
			BaseURL:       getEnv("CRAWL_BASE_URL", constants.CrawlerConfig.BaseURL),
			UserAgent:     getEnv("CRAWL_USER_AGENT", constants.CrawlerConfig.UserAgent),
			Concurrency:   getEnvInt("CRAWL_CONCURRENCY", constants.CrawlerConfig.Concurrency),
			Delay:         time.Duration(getEnvInt("CRAWL_DELAY_MS", int(constants.CrawlerConfig.Delay/time.Millisecond))) * time.Millisecond,
			Timeout:       time.Duration(getEnvInt("CRAWL_TIMEOUT_SECONDS", int(constants.CrawlerConfig.Timeout/time.Second))) * time.Second,
			Nationalities: parseIntList(getEnv("CRAWL_NATIONALITIES", "")),
			OutputDir:     getEnv("CRAWL_OUTPUT_DIR", trainingDir),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Training.Source {
	case SourceFile:
		if c.Training.File == "" && c.Training.Dir == "" {
			return fmt.Errorf("TRAINING_FILE or TRAINING_DIR is required")
		}
	case SourceSQLite:
		if c.Training.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	case SourcePostgres:
		if c.Postgres.Host == "" || c.Postgres.Database == "" {
			return fmt.Errorf("POSTGRES_HOST and POSTGRES_DB are required")
		}
	default:
		return fmt.Errorf("TRAINING_SOURCE must be one of file, sqlite, postgres (got %q)", c.Training.Source)
	}
	if c.Generation.MinProfileLength <= 0 {
		return fmt.Errorf("MIN_PROFILE_LENGTH must be positive")
	}
	if c.Generation.MaxBiographyLines <= 0 {
		return fmt.Errorf("MAX_BIOGRAPHY_LINES must be positive")
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("CACHE_SIZE must not be negative")
	}
	if c.Crawl.Concurrency <= 0 {
		return fmt.Errorf("CRAWL_CONCURRENCY must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func parseIntList(value string) []int {
	if value == "" {
		return []int{}
	}
	parts := strings.Split(value, ",")
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			if intVal, err := strconv.Atoi(trimmed); err == nil {
				result = append(result, intVal)
			}
		}
	}
	return result
}
