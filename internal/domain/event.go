package domain

import (
	"fmt"
	"time"
)

// Event is the canonical, classifiable unit derived from a RawDocument.
// Everything except the classification and embedding fields is immutable
// after creation; each of those groups has a single writer.
type Event struct {
	EventID string `json:"eventId"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Source  string `json:"source"`
	Section string `json:"section,omitempty"`

	PubDate time.Time `json:"pubDate,omitempty"`
	URL     string    `json:"url,omitempty"`

	RiskLabel    *RiskLabel `json:"riskLabel,omitempty"`
	Rationale    *string    `json:"rationale,omitempty"`
	Confidence   *float64   `json:"confidence,omitempty"`
	ClassifierTS *time.Time `json:"classifierTs,omitempty"`

	Embedding      *string `json:"embedding,omitempty"`
	EmbeddingModel *string `json:"embeddingModel,omitempty"`

	Alerted *bool `json:"alerted,omitempty"`
}

// EventID derives the canonical event identifier from a raw document.
// It is never generated independently of the raw id.
func EventID(source, rawID string) string {
	return fmt.Sprintf("%s:%s", source, rawID)
}

// Classified reports whether the classifier already wrote its fields.
func (e *Event) Classified() bool {
	return e.RiskLabel != nil
}
