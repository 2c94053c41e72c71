package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/dkovac/dno-radar/internal/domain"
)

// TableIndex is the destination key for the search index.
const TableIndex = "events_index"

type ESConfig struct {
	Addresses []string
	IndexName string
	Username  string
	Password  string
}

// ESSink mirrors classified events into Elasticsearch for ad-hoc
// investigation. Same Sink contract as the catalog: the writer owns
// batching and retries.
type ESSink struct {
	client    *elasticsearch.TypedClient
	indexName string
}

// esEvent is the flattened index document.
type esEvent struct {
	EventID    string     `json:"event_id"`
	Title      string     `json:"title"`
	Text       string     `json:"text"`
	Source     string     `json:"source"`
	Section    string     `json:"section"`
	PubDate    *time.Time `json:"pub_date,omitempty"`
	URL        string     `json:"url"`
	RiskLabel  *string    `json:"risk_label,omitempty"`
	Rationale  *string    `json:"rationale,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
	IndexedAt  time.Time  `json:"indexed_at"`
}

func NewESSink(ctx context.Context, config ESConfig) (*ESSink, error) {
	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
	}
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewTypedClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	sink := &ESSink{
		client:    client,
		indexName: config.IndexName,
	}

	if err := sink.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return sink, nil
}

func (s *ESSink) ensureIndex(ctx context.Context) error {
	exists, err := s.client.Indices.Exists(s.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	if exists {
		return nil
	}

	createRes, err := s.client.Indices.Create(s.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if !createRes.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged")
	}

	slog.Info("Index created successfully", "index", s.indexName)
	return nil
}

func (s *ESSink) InsertBatch(ctx context.Context, table string, records []any) error {
	if len(records) == 0 {
		return nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         s.indexName,
		Client:        s.client,
		NumWorkers:    2,
		FlushBytes:    5e+6,
		FlushInterval: 30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	var failed int64

	for _, record := range records {
		event, ok := record.(domain.Event)
		if !ok {
			return fmt.Errorf("es sink got %T, want domain.Event", record)
		}
		doc := mapEvent(event)

		docBytes, err := json.Marshal(doc)
		if err != nil {
			slog.Error("failed to marshal document", "error", err, "id", doc.EventID)
			failed++
			continue
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.EventID,
			Body:       bytes.NewReader(docBytes),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failed++
				if err != nil {
					slog.Error("bulk index error", "error", err, "id", item.DocumentID)
				} else {
					slog.Error("bulk index error", "status", res.Status, "reason", res.Error.Reason, "id", item.DocumentID)
				}
			},
		})
		if err != nil {
			failed++
			slog.Error("failed to add document to bulk indexer", "error", err, "id", doc.EventID)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("failed to close bulk indexer: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("failed to index %d out of %d events", failed, len(records))
	}
	return nil
}

func mapEvent(event domain.Event) esEvent {
	doc := esEvent{
		EventID:    event.EventID,
		Title:      event.Title,
		Text:       event.Text,
		Source:     event.Source,
		Section:    event.Section,
		URL:        event.URL,
		RiskLabel:  (*string)(event.RiskLabel),
		Rationale:  event.Rationale,
		Confidence: event.Confidence,
		IndexedAt:  time.Now(),
	}
	if !event.PubDate.IsZero() {
		pd := event.PubDate
		doc.PubDate = &pd
	}
	return doc
}
