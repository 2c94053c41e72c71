package landing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkovac/dno-radar/internal/apperr"
	"github.com/dkovac/dno-radar/internal/domain"
	pgdb "github.com/dkovac/dno-radar/internal/pg"
)

// PgStore persists the landing zone in Postgres. The primary key on raw_id
// is the concurrency primitive: concurrent first-inserts of the same id
// resolve through ON CONFLICT, so only one caller observes is_new=true.
type PgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(pool *pgdb.ConnectionPool) *PgStore {
	return &PgStore{db: pool.GetConn()}
}

const landingSchema = `
CREATE TABLE IF NOT EXISTS landing_documents (
    raw_id     TEXT PRIMARY KEY,
    source     TEXT NOT NULL,
    payload    BYTEA NOT NULL,
    meta       JSONB NOT NULL DEFAULT '{}',
    retries    INT NOT NULL DEFAULT 0,
    status     TEXT NOT NULL DEFAULT 'pending',
    fetched_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_landing_status ON landing_documents(status);
CREATE INDEX IF NOT EXISTS idx_landing_fetched ON landing_documents(fetched_at);
`

func (s *PgStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, landingSchema); err != nil {
		return fmt.Errorf("failed to ensure landing schema: %w", err)
	}
	return nil
}

func (s *PgStore) CreateWithDedup(ctx context.Context, source string, payload []byte, meta map[string]any) (domain.RawDocument, bool, error) {
	id := GenerateID(payload, source)

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return domain.RawDocument{}, false, fmt.Errorf("failed to marshal meta: %w", err)
	}

	now := time.Now()
	cmd := `
        INSERT INTO landing_documents (raw_id, source, payload, meta, retries, status, fetched_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, 0, $5, $6, $6, $6)
        ON CONFLICT (raw_id) DO NOTHING;
    `
	tag, err := s.db.Exec(ctx, cmd, id, source, payload, metaJSON, domain.StatusPending, now)
	if err != nil {
		return domain.RawDocument{}, false, fmt.Errorf("failed to insert raw document: %w", err)
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		return domain.RawDocument{}, false, err
	}

	return doc, tag.RowsAffected() == 1, nil
}

func (s *PgStore) Get(ctx context.Context, rawID string) (domain.RawDocument, error) {
	query := `
        SELECT raw_id, source, payload, meta, retries, status, fetched_at, created_at, updated_at
        FROM landing_documents
        WHERE raw_id = $1;
    `
	doc, err := scanDocument(s.db.QueryRow(ctx, query, rawID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.RawDocument{}, apperr.NewNotFound("raw document", rawID)
	}
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("failed to get raw document: %w", err)
	}
	return doc, nil
}

func (s *PgStore) MarkParsed(ctx context.Context, rawID string) error {
	cmd := `
        UPDATE landing_documents
        SET status = $2, updated_at = now()
        WHERE raw_id = $1 AND status NOT IN ($2, $3);
    `
	_, err := s.db.Exec(ctx, cmd, rawID, domain.StatusParsed, domain.StatusDLQ)
	if err != nil {
		return fmt.Errorf("failed to mark parsed: %w", err)
	}
	return nil
}

func (s *PgStore) MarkError(ctx context.Context, rawID string) error {
	cmd := `
        UPDATE landing_documents
        SET retries = retries + 1,
            status = CASE WHEN retries + 1 < $2 THEN $3 ELSE $4 END,
            updated_at = now()
        WHERE raw_id = $1 AND status <> $4;
    `
	_, err := s.db.Exec(ctx, cmd, rawID, domain.MaxDocumentRetries, domain.StatusError, domain.StatusDLQ)
	if err != nil {
		return fmt.Errorf("failed to mark error: %w", err)
	}
	return nil
}

func (s *PgStore) GetUnparsed(ctx context.Context, limit int) ([]domain.RawDocument, error) {
	query := `
        SELECT raw_id, source, payload, meta, retries, status, fetched_at, created_at, updated_at
        FROM landing_documents
        WHERE status IN ($1, $2)
        ORDER BY fetched_at
        LIMIT $3;
    `
	rows, err := s.db.Query(ctx, query, domain.StatusPending, domain.StatusError, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unparsed documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.RawDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan raw document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PgStore) VacuumOld(ctx context.Context, days int) (int64, error) {
	cmd := `
        DELETE FROM landing_documents
        WHERE status = $1 AND fetched_at < now() - make_interval(days => $2);
    `
	tag, err := s.db.Exec(ctx, cmd, domain.StatusParsed, days)
	if err != nil {
		return 0, fmt.Errorf("failed to vacuum landing zone: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanDocument(row pgx.Row) (domain.RawDocument, error) {
	var doc domain.RawDocument
	var metaJSON []byte
	err := row.Scan(
		&doc.RawID,
		&doc.Source,
		&doc.Payload,
		&metaJSON,
		&doc.Retries,
		&doc.Status,
		&doc.FetchedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return domain.RawDocument{}, err
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &doc.Meta); err != nil {
			return domain.RawDocument{}, fmt.Errorf("failed to unmarshal meta: %w", err)
		}
	}
	return doc, nil
}
