package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkovac/dno-radar/internal/catalog"
	"github.com/dkovac/dno-radar/internal/classifier"
	"github.com/dkovac/dno-radar/internal/enrich"
	"github.com/dkovac/dno-radar/internal/ingest"
	"github.com/dkovac/dno-radar/internal/landing"
	"github.com/dkovac/dno-radar/internal/llm"
	"github.com/dkovac/dno-radar/internal/pg"
	"github.com/dkovac/dno-radar/internal/writer"
	"github.com/dkovac/dno-radar/pkg/config/env"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "riskctl",
		Short: "Operational tooling for the D&O risk pipeline",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := env.LoadDotEnv(os.Getenv("ENV"), "cmd/riskctl/.env"); err != nil {
				slog.Info("Skipping .env environment variables...", "error", err)
			}
		},
	}

	root.AddCommand(newVacuumCmd())
	root.AddCommand(newBacklogCmd())
	root.AddCommand(newEnrichCmd())
	root.AddCommand(newClassifyCmd())
	return root
}

func newVacuumCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "vacuum",
		Short: "Delete parsed landing documents older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			deleted, err := landing.NewPgStore(pool).VacuumOld(ctx, days)
			if err != nil {
				return err
			}
			slog.Info("vacuum finished", "deleted", deleted, "retention_days", days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "retention window in days")
	return cmd
}

func newBacklogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "backlog",
		Short: "Re-run classification over pending and errored landing documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := landing.NewPgStore(pool)
			storer := catalog.NewPgStorer(pool)

			engine, err := newEngine()
			if err != nil {
				return err
			}

			w := newCatalogWriter(storer)
			coordinator := ingest.NewCoordinator(nil, store, engine, w)

			processed, err := coordinator.ProcessBacklog(ctx, limit)
			if err != nil {
				return err
			}
			w.Close(ctx)
			slog.Info("backlog sweep finished", "processed", processed)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 500, "maximum documents to process")
	return cmd
}

func newEnrichCmd() *cobra.Command {
	var limit int
	var model string

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Backfill embeddings for classified events",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			baseURL := os.Getenv("LLM_BASE_URL")
			if baseURL == "" {
				return errors.New("LLM_BASE_URL environment variable is not set")
			}
			embedder, err := llm.NewOllamaClient(baseURL)
			if err != nil {
				return err
			}

			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			enricher := enrich.New(embedder, catalog.NewPgStorer(pool),
				enrich.WithModel(model), enrich.WithBatchLimit(limit))

			embedded, err := enricher.Run(ctx)
			if err != nil {
				return err
			}
			slog.Info("enrichment finished", "embedded", embedded)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "maximum events to embed")
	cmd.Flags().StringVar(&model, "model", "nomic-embed-text", "embedding model name")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var title, section, source string

	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify a document from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}

			result := engine.Classify(cmd.Context(), classifier.Request{
				Text:    strings.Join(args, " "),
				Title:   title,
				Section: section,
				Source:  source,
			})

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "document title")
	cmd.Flags().StringVar(&section, "section", "", "source section code")
	cmd.Flags().StringVar(&source, "source", "cli", "source name")
	return cmd
}

func newCatalogWriter(storer catalog.Storer) *writer.Writer {
	sink := writer.NewRouterSink().Route(writer.TableEvents, writer.NewCatalogSink(storer))
	return writer.New(sink)
}

func connect(ctx context.Context) (*pg.ConnectionPool, error) {
	connStr := os.Getenv("PG_CONN_STR")
	if connStr == "" {
		return nil, errors.New("PG_CONN_STR environment variable is not set")
	}
	return pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: connStr})
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
