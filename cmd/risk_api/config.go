package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/dkovac/dno-radar/internal/server"
	"github.com/dkovac/dno-radar/pkg/config/env"
)

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type AppConfig struct {
	ENV string
}

type ApiConfig struct {
	ConnStr string
	Server  *server.Config
}

func (as *AppConfig) Load() (*ApiConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/risk_api/.env")
	if err != nil {
		slog.Info("Skipping .env environment variables...", "error", err)
	}

	connStr := os.Getenv("PG_CONN_STR")
	if connStr == "" {
		return nil, errors.New("PG_CONN_STR environment variable is not set")
	}

	serverCfg, err := server.LoadConfig()
	if err != nil {
		return nil, err
	}

	return &ApiConfig{
		ConnStr: connStr,
		Server:  serverCfg,
	}, nil
}
