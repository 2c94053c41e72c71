package ingest

import (
	"context"
	"time"
)

// Query is the shared search request fanned out to every source adapter.
type Query struct {
	Term     string
	From     time.Time
	To       time.Time
	DaysBack int
}

// RawItem is the minimal shape every adapter must produce. Extra carries
// source-specific metadata verbatim; nothing here validates its schema.
type RawItem struct {
	Title     string         `json:"title"`
	URL       string         `json:"url"`
	Body      string         `json:"body,omitempty"`
	Section   string         `json:"section,omitempty"`
	Published time.Time      `json:"published,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

type Summary struct {
	Query        string   `json:"query"`
	TotalResults int      `json:"totalResults"`
	Errors       []string `json:"errors,omitempty"`
}

type Result struct {
	Summary Summary   `json:"summary"`
	Items   []RawItem `json:"items"`
}

// Adapter is one external document source. Implementations own their
// transport and per-call timeouts; the coordinator treats every failure as
// source-local.
type Adapter interface {
	Name() string
	Search(ctx context.Context, q Query) (Result, error)
}
