package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the whole application configuration.
// Populated from environment variables.
type Config struct {
	App    AppConfig
	Redis  RedisConfig
	MinIO  MinIOConfig
	Import ImportConfig
	Job    JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ImportConfig tunes the bulk client-import pipeline.
type ImportConfig struct {
	ChunkSize          int           // records per chunk (default 20, capped at 30)
	SizeThresholdBytes int64         // below this serialized size a run is submitted direct
	DirectCountLimit   int           // at or below this record count a run is submitted direct
	ChunkPacing        time.Duration // delay between chunk submissions
	AsyncFileBytes     int64         // uploads larger than this go through the worker
	MaxUploadBytes     int64         // hard cap on accepted upload size
}

// JobConfig tunes background job retention.
type JobConfig struct {
	ImportJobRetentionDays int
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "CoachHub API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "coachhub"),
			UseSSL:    false,
		},
		Import: ImportConfig{
			ChunkSize:          getEnvInt("IMPORT_CHUNK_SIZE", 20),
			SizeThresholdBytes: int64(getEnvInt("IMPORT_SIZE_THRESHOLD", 4*1024*1024)),
			DirectCountLimit:   getEnvInt("IMPORT_DIRECT_COUNT_LIMIT", 10),
			ChunkPacing:        time.Duration(getEnvInt("IMPORT_CHUNK_PACING_MS", 100)) * time.Millisecond,
			AsyncFileBytes:     int64(getEnvInt("IMPORT_ASYNC_FILE_BYTES", 1024*1024)),
			MaxUploadBytes:     int64(getEnvInt("IMPORT_MAX_UPLOAD_BYTES", 20*1024*1024)),
		},
		Job: JobConfig{
			ImportJobRetentionDays: getEnvInt("IMPORT_JOB_RETENTION_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for invalid combinations.
func (c *Config) Validate() error {
	if c.Import.ChunkSize <= 0 {
		return fmt.Errorf("IMPORT_CHUNK_SIZE must be positive")
	}
	// Chunk size is capped to keep a single batch request bounded.
	if c.Import.ChunkSize > 30 {
		c.Import.ChunkSize = 30
	}

	if c.App.Environment == "production" {
		if os.Getenv("DB_PASSWORD") == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.MinIO.AccessKey == "minioadmin" {
			fmt.Println("WARNING: MinIO access key is the default - uploads are not secured")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
