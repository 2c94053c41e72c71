package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dkovac/dno-radar/internal/catalog"
	"github.com/dkovac/dno-radar/internal/classifier"
	"github.com/dkovac/dno-radar/internal/domain"
	"github.com/dkovac/dno-radar/internal/landing"
	"github.com/dkovac/dno-radar/internal/writer"
)

// SourceReport aggregates one adapter's contribution to a run.
type SourceReport struct {
	Source     string   `json:"source"`
	Fetched    int      `json:"fetched"`
	New        int      `json:"new"`
	Classified int      `json:"classified"`
	Errors     []string `json:"errors,omitempty"`
}

// RunSummary is observability output, not business state.
type RunSummary struct {
	RunID      string                  `json:"runId"`
	Query      string                  `json:"query"`
	StartedAt  time.Time               `json:"startedAt"`
	Duration   time.Duration           `json:"duration"`
	Sources    map[string]SourceReport `json:"sources"`
	TotalFetch int                     `json:"totalFetched"`
	TotalNew   int                     `json:"totalNew"`
}

// Coordinator fans a query out to every source adapter, lands the results
// in the dedup store, classifies what is new and hands events to the
// batched writer. One source failing, panicking or timing out never
// affects the others.
type Coordinator struct {
	adapters []Adapter
	store    landing.Store
	engine   *classifier.Engine
	writer   *writer.Writer

	indexEvents bool
}

type CoordinatorOption func(*Coordinator)

// WithSearchIndex mirrors events into the search index table as well.
func WithSearchIndex() CoordinatorOption {
	return func(c *Coordinator) {
		c.indexEvents = true
	}
}

func NewCoordinator(adapters []Adapter, store landing.Store, engine *classifier.Engine, w *writer.Writer, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		adapters: adapters,
		store:    store,
		engine:   engine,
		writer:   w,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one fan-out. It always returns a summary, even when every
// source failed.
func (c *Coordinator) Run(ctx context.Context, q Query) RunSummary {
	start := time.Now()
	summary := RunSummary{
		RunID:     uuid.NewString(),
		Query:     q.Term,
		StartedAt: start,
		Sources:   make(map[string]SourceReport, len(c.adapters)),
	}

	slog.Info("Starting ingestion run",
		"run_id", summary.RunID, "query", q.Term, "sources", len(c.adapters))

	reports := make(chan SourceReport, len(c.adapters))
	for _, adapter := range c.adapters {
		go func(adapter Adapter) {
			reports <- c.runSource(ctx, adapter, q)
		}(adapter)
	}

	for range c.adapters {
		report := <-reports
		summary.Sources[report.Source] = report
		summary.TotalFetch += report.Fetched
		summary.TotalNew += report.New
	}

	summary.Duration = time.Since(start)
	slog.Info("Ingestion run completed",
		"run_id", summary.RunID,
		"fetched", summary.TotalFetch,
		"new", summary.TotalNew,
		"duration", summary.Duration,
	)
	return summary
}

// runSource is the isolation boundary: every adapter error, including a
// panic, becomes data in the per-source report.
func (c *Coordinator) runSource(ctx context.Context, adapter Adapter, q Query) (report SourceReport) {
	report = SourceReport{Source: adapter.Name()}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("source adapter panicked", "source", adapter.Name(), "panic", r)
			report.Errors = append(report.Errors, fmt.Sprintf("adapter panic: %v", r))
		}
	}()

	result, err := adapter.Search(ctx, q)
	if err != nil {
		slog.Warn("source search failed", "source", adapter.Name(), "error", err)
		report.Errors = append(report.Errors, err.Error())
		return report
	}
	report.Errors = append(report.Errors, result.Summary.Errors...)

	for _, item := range result.Items {
		if err := c.processItem(ctx, adapter.Name(), item, &report); err != nil {
			slog.Warn("failed to process item",
				"source", adapter.Name(), "url", item.URL, "error", err)
			report.Errors = append(report.Errors, err.Error())
		}
	}
	return report
}

func (c *Coordinator) processItem(ctx context.Context, source string, item RawItem, report *SourceReport) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	meta := map[string]any{
		"url":     item.URL,
		"section": item.Section,
	}
	if !item.Published.IsZero() {
		meta["published"] = item.Published.Format(time.RFC3339)
	}
	for key, value := range item.Extra {
		meta[key] = value
	}

	doc, isNew, err := c.store.CreateWithDedup(ctx, source, payload, meta)
	if err != nil {
		return fmt.Errorf("landing store: %w", err)
	}
	report.Fetched++
	if !isNew {
		return nil
	}
	report.New++

	if err := c.classifyAndQueue(ctx, doc, item); err != nil {
		if markErr := c.store.MarkError(ctx, doc.RawID); markErr != nil {
			slog.Error("failed to mark document errored", "raw_id", doc.RawID, "error", markErr)
		}
		return err
	}

	if err := c.store.MarkParsed(ctx, doc.RawID); err != nil {
		return fmt.Errorf("mark parsed: %w", err)
	}
	report.Classified++
	return nil
}

func (c *Coordinator) classifyAndQueue(ctx context.Context, doc domain.RawDocument, item RawItem) error {
	result := c.engine.Classify(ctx, classifier.Request{
		Text:    item.Body,
		Title:   item.Title,
		Source:  doc.Source,
		Section: item.Section,
	})

	event := catalog.EventFromRaw(doc, item.Title, item.Body, item.Section, item.Published, item.URL)
	now := time.Now()
	event.RiskLabel = &result.Label
	event.Rationale = &result.Reason
	event.Confidence = &result.Confidence
	event.ClassifierTS = &now

	c.writer.Queue(ctx, writer.TableEvents, event)
	if c.indexEvents {
		c.writer.Queue(ctx, writer.TableIndex, event)
	}
	return nil
}

// ProcessBacklog drains unparsed landing documents (fresh and previously
// errored) through classification again. Documents whose payload no longer
// unmarshals burn a retry and eventually dead-letter.
func (c *Coordinator) ProcessBacklog(ctx context.Context, limit int) (int, error) {
	docs, err := c.store.GetUnparsed(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to load backlog: %w", err)
	}

	processed := 0
	for _, doc := range docs {
		var item RawItem
		if err := json.Unmarshal(doc.Payload, &item); err != nil {
			slog.Warn("backlog document has malformed payload",
				"raw_id", doc.RawID, "source", doc.Source, "error", err)
			if markErr := c.store.MarkError(ctx, doc.RawID); markErr != nil {
				slog.Error("failed to mark document errored", "raw_id", doc.RawID, "error", markErr)
			}
			continue
		}

		if err := c.classifyAndQueue(ctx, doc, item); err != nil {
			if markErr := c.store.MarkError(ctx, doc.RawID); markErr != nil {
				slog.Error("failed to mark document errored", "raw_id", doc.RawID, "error", markErr)
			}
			continue
		}
		if err := c.store.MarkParsed(ctx, doc.RawID); err != nil {
			slog.Error("failed to mark document parsed", "raw_id", doc.RawID, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}
