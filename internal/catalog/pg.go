package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkovac/dno-radar/internal/apperr"
	"github.com/dkovac/dno-radar/internal/domain"
	pgdb "github.com/dkovac/dno-radar/internal/pg"
)

type PgStorer struct {
	db *pgxpool.Pool
}

func NewPgStorer(pool *pgdb.ConnectionPool) *PgStorer {
	return &PgStorer{db: pool.GetConn()}
}

const eventsSchema = `
CREATE TABLE IF NOT EXISTS events (
    event_id        TEXT PRIMARY KEY,
    title           TEXT NOT NULL DEFAULT '',
    text            TEXT NOT NULL DEFAULT '',
    source          TEXT NOT NULL,
    section         TEXT NOT NULL DEFAULT '',
    pub_date        DATE,
    url             TEXT NOT NULL DEFAULT '',
    embedding       TEXT,
    embedding_model TEXT,
    risk_label      TEXT,
    rationale       TEXT,
    confidence      DOUBLE PRECISION,
    classifier_ts   TIMESTAMPTZ,
    alerted         BOOLEAN
);

CREATE INDEX IF NOT EXISTS idx_events_risk_label ON events(risk_label);
CREATE INDEX IF NOT EXISTS idx_events_source ON events(source);
`

func (s *PgStorer) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, eventsSchema); err != nil {
		return fmt.Errorf("failed to ensure events schema: %w", err)
	}
	return nil
}

const insertEventCmd = `
    INSERT INTO events (event_id, title, text, source, section, pub_date, url,
                        embedding, embedding_model, risk_label, rationale, confidence, classifier_ts, alerted)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    ON CONFLICT (event_id) DO NOTHING;
`

func (s *PgStorer) Save(ctx context.Context, event domain.Event) error {
	_, err := s.db.Exec(ctx, insertEventCmd, insertArgs(event)...)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// SaveBulk inserts a batch in one round trip. Duplicates (re-queued events
// whose id already exists) are skipped, not overwritten.
func (s *PgStorer) SaveBulk(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(insertEventCmd, insertArgs(event)...)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to bulk insert events: %w", err)
		}
	}
	return nil
}

func insertArgs(event domain.Event) []any {
	var pubDate *time.Time
	if !event.PubDate.IsZero() {
		pubDate = &event.PubDate
	}
	return []any{
		event.EventID,
		event.Title,
		event.Text,
		event.Source,
		event.Section,
		pubDate,
		event.URL,
		event.Embedding,
		event.EmbeddingModel,
		event.RiskLabel,
		event.Rationale,
		event.Confidence,
		event.ClassifierTS,
		event.Alerted,
	}
}

func (s *PgStorer) Get(ctx context.Context, eventID string) (domain.Event, error) {
	query := `
        SELECT event_id, title, text, source, section, pub_date, url,
               embedding, embedding_model, risk_label, rationale, confidence, classifier_ts, alerted
        FROM events
        WHERE event_id = $1;
    `
	event, err := scanEvent(s.db.QueryRow(ctx, query, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Event{}, apperr.NewNotFound("event", eventID)
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (s *PgStorer) SetClassification(ctx context.Context, eventID string, result domain.ClassificationResult, ts time.Time) error {
	cmd := `
        UPDATE events
        SET risk_label = $2, rationale = $3, confidence = $4, classifier_ts = $5
        WHERE event_id = $1;
    `
	tag, err := s.db.Exec(ctx, cmd, eventID, result.Label, result.Reason, result.Confidence, ts)
	if err != nil {
		return fmt.Errorf("failed to set classification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NewNotFound("event", eventID)
	}
	return nil
}

func (s *PgStorer) SetEmbedding(ctx context.Context, eventID, embedding, model string) error {
	cmd := `
        UPDATE events
        SET embedding = $2, embedding_model = $3
        WHERE event_id = $1;
    `
	tag, err := s.db.Exec(ctx, cmd, eventID, embedding, model)
	if err != nil {
		return fmt.Errorf("failed to set embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NewNotFound("event", eventID)
	}
	return nil
}

func (s *PgStorer) ListUnclassified(ctx context.Context, limit int) ([]domain.Event, error) {
	query := `
        SELECT event_id, title, text, source, section, pub_date, url,
               embedding, embedding_model, risk_label, rationale, confidence, classifier_ts, alerted
        FROM events
        WHERE risk_label IS NULL
        ORDER BY event_id
        LIMIT $1;
    `
	return s.list(ctx, query, limit)
}

func (s *PgStorer) ListUnembedded(ctx context.Context, limit int) ([]domain.Event, error) {
	query := `
        SELECT event_id, title, text, source, section, pub_date, url,
               embedding, embedding_model, risk_label, rationale, confidence, classifier_ts, alerted
        FROM events
        WHERE risk_label IS NOT NULL AND embedding IS NULL
        ORDER BY event_id
        LIMIT $1;
    `
	return s.list(ctx, query, limit)
}

func (s *PgStorer) list(ctx context.Context, query string, limit int) ([]domain.Event, error) {
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanEvent(row pgx.Row) (domain.Event, error) {
	var event domain.Event
	var pubDate *time.Time
	err := row.Scan(
		&event.EventID,
		&event.Title,
		&event.Text,
		&event.Source,
		&event.Section,
		&pubDate,
		&event.URL,
		&event.Embedding,
		&event.EmbeddingModel,
		&event.RiskLabel,
		&event.Rationale,
		&event.Confidence,
		&event.ClassifierTS,
		&event.Alerted,
	)
	if err != nil {
		return domain.Event{}, err
	}
	if pubDate != nil {
		event.PubDate = *pubDate
	}
	return event, nil
}
