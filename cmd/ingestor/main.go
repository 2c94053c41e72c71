package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/dkovac/dno-radar/internal/alerting"
	"github.com/dkovac/dno-radar/internal/catalog"
	"github.com/dkovac/dno-radar/internal/classifier"
	"github.com/dkovac/dno-radar/internal/ingest"
	"github.com/dkovac/dno-radar/internal/landing"
	"github.com/dkovac/dno-radar/internal/llm"
	"github.com/dkovac/dno-radar/internal/pg"
	"github.com/dkovac/dno-radar/internal/writer"
)

func main() {
	appSettings := NewAppConfig()

	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.ConnStr})
	if err != nil {
		slog.Error("failed to connect to Postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := landing.NewPgStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Error("failed to prepare landing schema", "error", err)
		os.Exit(1)
	}

	storer := catalog.NewPgStorer(pool)
	if err := storer.EnsureSchema(ctx); err != nil {
		slog.Error("failed to prepare events schema", "error", err)
		os.Exit(1)
	}

	engine, err := newEngine()
	if err != nil {
		slog.Error("failed to create classification engine", "error", err)
		os.Exit(1)
	}

	w, err := newWriter(ctx, cfg, storer)
	if err != nil {
		slog.Error("failed to create batch writer", "error", err)
		os.Exit(1)
	}

	adapters, err := loadAdapters(cfg.SourcesPath)
	if err != nil {
		slog.Error("failed to load source configuration", "error", err)
		os.Exit(1)
	}

	var opts []ingest.CoordinatorOption
	if cfg.ES != nil {
		opts = append(opts, ingest.WithSearchIndex())
	}
	coordinator := ingest.NewCoordinator(adapters, store, engine, w, opts...)

	summary := coordinator.Run(ctx, ingest.Query{
		Term:     cfg.QueryTerm,
		DaysBack: cfg.DaysBack,
	})

	retried, err := coordinator.ProcessBacklog(ctx, cfg.BacklogLimit)
	if err != nil {
		slog.Error("backlog sweep failed", "error", err)
	}

	w.Close(ctx)

	slog.Info("ingestion finished",
		"run_id", summary.RunID,
		"fetched", summary.TotalFetch,
		"new", summary.TotalNew,
		"backlog_retried", retried,
	)
}

func newEngine() (*classifier.Engine, error) {
	llmCfg, err := llm.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if !llmCfg.Enabled {
		slog.Info("LLM fallback disabled, keyword layers only")
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

func newWriter(ctx context.Context, cfg *IngestorConfig, storer catalog.Storer) (*writer.Writer, error) {
	router := writer.NewRouterSink().Route(writer.TableEvents, writer.NewCatalogSink(storer))

	if cfg.ES != nil {
		esSink, err := writer.NewESSink(ctx, *cfg.ES)
		if err != nil {
			return nil, err
		}
		router.Route(writer.TableIndex, esSink)
	}

	monitor := newMonitor(cfg)
	return writer.New(router,
		writer.WithBatchSize(cfg.BatchSize),
		writer.WithMonitor(monitor),
	), nil
}

func newMonitor(cfg *IngestorConfig) alerting.Monitor {
	if cfg.RedisAddr == "" {
		return alerting.NewMemoryMonitor()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return alerting.NewRedisMonitor(client)
}

func loadAdapters(path string) ([]ingest.Adapter, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	sources, err := ingest.NewYAMLConfigLoader(file).Load(true)
	if err != nil {
		return nil, err
	}

	adapters := make([]ingest.Adapter, 0, len(sources.Sources))
	for _, src := range sources.Sources {
		adapters = append(adapters, ingest.NewGenericAdapter(src))
	}
	return adapters, nil
}
