package landing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/dkovac/dno-radar/internal/domain"
)

// GenerateID computes the content-addressed identifier for a payload:
// SHA-256 over payload bytes followed by the source name, hex-encoded.
// Identical (payload, source) pairs always yield the identical id.
func GenerateID(payload []byte, source string) string {
	h := sha256.New()
	h.Write(payload)
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Store is the deduplicated landing zone for raw documents.
type Store interface {
	// CreateWithDedup inserts the document if its content-addressed id is
	// unseen and returns (doc, true); re-submitting an identical
	// (payload, source) pair returns the existing row and false.
	CreateWithDedup(ctx context.Context, source string, payload []byte, meta map[string]any) (domain.RawDocument, bool, error)

	Get(ctx context.Context, rawID string) (domain.RawDocument, error)

	// MarkParsed transitions pending/error -> parsed. Idempotent; a dlq
	// document stays dlq.
	MarkParsed(ctx context.Context, rawID string) error

	// MarkError increments the retry counter; below the retry budget the
	// document goes to error, at the budget it is dead-lettered. The dlq
	// transition is a one-way ratchet.
	MarkError(ctx context.Context, rawID string) error

	// GetUnparsed returns documents still eligible for processing
	// (pending or error), ordered by fetch time.
	GetUnparsed(ctx context.Context, limit int) ([]domain.RawDocument, error)

	// VacuumOld deletes parsed documents fetched before the cutoff.
	// error/dlq documents are never vacuumed.
	VacuumOld(ctx context.Context, days int) (int64, error)
}
