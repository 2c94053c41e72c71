package catalog

import (
	"context"
	"time"

	"github.com/dkovac/dno-radar/internal/domain"
)

// Storer persists canonical events. Events are immutable after creation
// except for the classification and embedding fields; each group is written
// by exactly one writer and a re-write is an explicit overwrite.
type Storer interface {
	Save(ctx context.Context, event domain.Event) error
	SaveBulk(ctx context.Context, events []domain.Event) error
	Get(ctx context.Context, eventID string) (domain.Event, error)

	// SetClassification overwrites the classification fields.
	SetClassification(ctx context.Context, eventID string, result domain.ClassificationResult, ts time.Time) error

	// SetEmbedding overwrites the embedding marker and model.
	SetEmbedding(ctx context.Context, eventID, embedding, model string) error

	ListUnclassified(ctx context.Context, limit int) ([]domain.Event, error)
	ListUnembedded(ctx context.Context, limit int) ([]domain.Event, error)
}

// EventFromRaw derives the canonical event for a landing-zone document.
func EventFromRaw(doc domain.RawDocument, title, text, section string, pubDate time.Time, url string) domain.Event {
	return domain.Event{
		EventID: domain.EventID(doc.Source, doc.RawID),
		Title:   title,
		Text:    text,
		Source:  doc.Source,
		Section: section,
		PubDate: pubDate,
		URL:     url,
	}
}
