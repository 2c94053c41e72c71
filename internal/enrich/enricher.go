package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dkovac/dno-radar/internal/catalog"
	"github.com/dkovac/dno-radar/internal/domain"
	"github.com/dkovac/dno-radar/internal/llm"
)

const defaultBatchLimit = 100

// Enricher backfills embeddings for classified events. It runs strictly
// after classification; an event with no risk label is never a candidate.
type Enricher struct {
	embedder llm.Embedder
	storer   catalog.Storer
	model    string
	limit    int
}

type Option func(*Enricher)

func WithModel(model string) Option {
	return func(e *Enricher) {
		e.model = model
	}
}

func WithBatchLimit(limit int) Option {
	return func(e *Enricher) {
		e.limit = limit
	}
}

func New(embedder llm.Embedder, storer catalog.Storer, opts ...Option) *Enricher {
	e := &Enricher{
		embedder: embedder,
		storer:   storer,
		model:    "nomic-embed-text",
		limit:    defaultBatchLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run embeds one batch of unembedded events and reports how many were
// written. Per-event failures are logged and skipped so one bad document
// never stalls the backlog.
func (e *Enricher) Run(ctx context.Context) (int, error) {
	events, err := e.storer.ListUnembedded(ctx, e.limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list unembedded events: %w", err)
	}

	embedded := 0
	for _, event := range events {
		if err := e.embedEvent(ctx, event); err != nil {
			slog.Warn("failed to embed event", "event_id", event.EventID, "error", err)
			continue
		}
		embedded++
	}

	if len(events) > 0 {
		slog.Info("embedding batch completed", "candidates", len(events), "embedded", embedded)
	}
	return embedded, nil
}

func (e *Enricher) embedEvent(ctx context.Context, event domain.Event) error {
	text := strings.TrimSpace(event.Title + "\n" + event.Text)
	if text == "" {
		return fmt.Errorf("event has no text to embed")
	}

	resp, err := e.embedder.Embed(ctx, llm.EmbedRequest{
		Model:  e.model,
		Prompt: text,
	})
	if err != nil {
		return err
	}
	if len(resp.Embedding) == 0 {
		return fmt.Errorf("model returned an empty embedding")
	}

	vector, err := json.Marshal(resp.Embedding)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}
	return e.storer.SetEmbedding(ctx, event.EventID, string(vector), e.model)
}
