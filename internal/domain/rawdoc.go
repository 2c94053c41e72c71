package domain

import "time"

// Status is the lifecycle state of a landing-zone document.
type Status string

const (
	StatusPending Status = "pending"
	StatusParsed  Status = "parsed"
	StatusError   Status = "error"
	StatusDLQ     Status = "dlq"
)

// MaxDocumentRetries is the retry budget before a document is dead-lettered.
const MaxDocumentRetries = 5

// RawDocument is one fetched item in the landing zone. The raw id is
// content-addressed: identical (payload, source) pairs always map to the
// same row.
type RawDocument struct {
	RawID     string         `json:"rawId"`
	Source    string         `json:"source"`
	Payload   []byte         `json:"payload"`
	Meta      map[string]any `json:"meta"`
	Retries   int            `json:"retries"`
	Status    Status         `json:"status"`
	FetchedAt time.Time      `json:"fetchedAt"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Terminal reports whether the document left the retry loop for good.
// Parsed is terminal success, dlq terminal failure.
func (s Status) Terminal() bool {
	return s == StatusParsed || s == StatusDLQ
}
