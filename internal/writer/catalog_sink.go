package writer

import (
	"context"
	"fmt"

	"github.com/dkovac/dno-radar/internal/catalog"
	"github.com/dkovac/dno-radar/internal/domain"
)

// TableEvents is the destination key for the canonical event table.
const TableEvents = "events"

// CatalogSink lands event batches in the catalog storer.
type CatalogSink struct {
	storer catalog.Storer
}

func NewCatalogSink(storer catalog.Storer) *CatalogSink {
	return &CatalogSink{storer: storer}
}

func (s *CatalogSink) InsertBatch(ctx context.Context, table string, records []any) error {
	events := make([]domain.Event, 0, len(records))
	for _, record := range records {
		event, ok := record.(domain.Event)
		if !ok {
			return fmt.Errorf("catalog sink got %T, want domain.Event", record)
		}
		events = append(events, event)
	}

	if err := s.storer.SaveBulk(ctx, events); err != nil {
		return fmt.Errorf("failed to insert %d events into %s: %w", len(events), table, err)
	}
	return nil
}
