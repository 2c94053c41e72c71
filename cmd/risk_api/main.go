package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/dkovac/dno-radar/internal/catalog"
	"github.com/dkovac/dno-radar/internal/classifier"
	"github.com/dkovac/dno-radar/internal/landing"
	"github.com/dkovac/dno-radar/internal/llm"
	"github.com/dkovac/dno-radar/internal/pg"
	"github.com/dkovac/dno-radar/internal/router"
	"github.com/dkovac/dno-radar/internal/server"
	pkgserver "github.com/dkovac/dno-radar/pkg/server"
)

func main() {
	appSettings := NewAppConfig()

	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.ConnStr})
	if err != nil {
		slog.Error("failed to connect to Postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := landing.NewPgStore(pool)
	storer := catalog.NewPgStorer(pool)

	engine, err := newEngine()
	if err != nil {
		slog.Error("failed to create classification engine", "error", err)
		os.Exit(1)
	}

	healthChecker := pkgserver.HealthCheckerFunc(pool.Ping)

	s := server.NewServer(echo.New(), cfg.Server)
	router.NewRiskRouter(s.Echo, engine, store, storer, healthChecker).Bind()

	if err := s.Start(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func newEngine() (*classifier.Engine, error) {
	llmCfg, err := llm.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if !llmCfg.Enabled {
		return classifier.NewEngine(classifier.NewRuleEngine()), nil
	}

	client, err := llm.NewOllamaClient(llmCfg.BaseURL, llm.WithTimeout(llmCfg.Timeout))
	if err != nil {
		return nil, err
	}
	return classifier.NewEngine(classifier.NewRuleEngine(),
		classifier.WithLLM(client, llmCfg.Model),
		classifier.WithLLMTimeout(llmCfg.Timeout),
	), nil
}
