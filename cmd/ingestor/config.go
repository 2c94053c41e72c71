package main

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dkovac/dno-radar/internal/writer"
	"github.com/dkovac/dno-radar/pkg/config/env"
	"github.com/dkovac/dno-radar/pkg/stringsutil"
)

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type AppConfig struct {
	ENV string
}

type IngestorConfig struct {
	ConnStr     string
	SourcesPath string

	QueryTerm string
	DaysBack  int

	BatchSize    int
	BacklogLimit int

	RedisAddr string

	// ES is nil when indexing is disabled.
	ES *writer.ESConfig
}

func (as *AppConfig) Load() (*IngestorConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/ingestor/.env")
	if err != nil {
		slog.Info("Skipping .env environment variables...", "error", err)
	}

	connStr := os.Getenv("PG_CONN_STR")
	if connStr == "" {
		return nil, errors.New("PG_CONN_STR environment variable is not set")
	}

	queryTerm := os.Getenv("QUERY_TERM")
	if queryTerm == "" {
		return nil, errors.New("QUERY_TERM environment variable is not set")
	}

	sourcesPath := os.Getenv("SOURCES_CONFIG_PATH")
	if sourcesPath == "" {
		sourcesPath = "cmd/ingestor/sources.yaml"
	}

	cfg := &IngestorConfig{
		ConnStr:      connStr,
		SourcesPath:  sourcesPath,
		QueryTerm:    queryTerm,
		DaysBack:     intEnv("QUERY_DAYS_BACK", 7),
		BatchSize:    intEnv("WRITER_BATCH_SIZE", 50),
		BacklogLimit: intEnv("BACKLOG_LIMIT", 500),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
	}

	if os.Getenv("ES_ENABLED") == "true" {
		addresses := stringsutil.RemoveEmptyStrings(strings.Split(os.Getenv("ES_ADDRESSES"), ","))
		if len(addresses) == 0 {
			return nil, errors.New("ES_ENABLED is set but ES_ADDRESSES is empty")
		}
		indexName := os.Getenv("ES_INDEX")
		if indexName == "" {
			indexName = "dno-events"
		}
		cfg.ES = &writer.ESConfig{
			Addresses: addresses,
			IndexName: indexName,
			Username:  os.Getenv("ES_USERNAME"),
			Password:  os.Getenv("ES_PASSWORD"),
		}
	}

	return cfg, nil
}

func intEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		slog.Warn("Invalid numeric environment variable, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return n
}
