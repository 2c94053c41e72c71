package landing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dkovac/dno-radar/internal/apperr"
	"github.com/dkovac/dno-radar/internal/domain"
)

// MemStore keeps the landing zone in memory. Used by tests and local runs;
// same semantics as the Postgres store.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string]domain.RawDocument

	now func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		docs: make(map[string]domain.RawDocument),
		now:  time.Now,
	}
}

func (s *MemStore) CreateWithDedup(ctx context.Context, source string, payload []byte, meta map[string]any) (domain.RawDocument, bool, error) {
	id := GenerateID(payload, source)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.docs[id]; ok {
		return existing, false, nil
	}

	now := s.now()
	doc := domain.RawDocument{
		RawID:     id,
		Source:    source,
		Payload:   payload,
		Meta:      meta,
		Retries:   0,
		Status:    domain.StatusPending,
		FetchedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.docs[id] = doc
	return doc, true, nil
}

func (s *MemStore) Get(ctx context.Context, rawID string) (domain.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[rawID]
	if !ok {
		return domain.RawDocument{}, apperr.NewNotFound("raw document", rawID)
	}
	return doc, nil
}

func (s *MemStore) MarkParsed(ctx context.Context, rawID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[rawID]
	if !ok {
		return apperr.NewNotFound("raw document", rawID)
	}
	if doc.Status == domain.StatusDLQ || doc.Status == domain.StatusParsed {
		return nil
	}

	doc.Status = domain.StatusParsed
	doc.UpdatedAt = s.now()
	s.docs[rawID] = doc
	return nil
}

func (s *MemStore) MarkError(ctx context.Context, rawID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[rawID]
	if !ok {
		return apperr.NewNotFound("raw document", rawID)
	}
	if doc.Status == domain.StatusDLQ {
		return nil
	}

	doc.Retries++
	if doc.Retries < domain.MaxDocumentRetries {
		doc.Status = domain.StatusError
	} else {
		doc.Status = domain.StatusDLQ
	}
	doc.UpdatedAt = s.now()
	s.docs[rawID] = doc
	return nil
}

func (s *MemStore) GetUnparsed(ctx context.Context, limit int) ([]domain.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.RawDocument
	for _, doc := range s.docs {
		if doc.Status == domain.StatusPending || doc.Status == domain.StatusError {
			docs = append(docs, doc)
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].FetchedAt.Before(docs[j].FetchedAt)
	})

	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (s *MemStore) VacuumOld(ctx context.Context, days int) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -days)

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, doc := range s.docs {
		if doc.Status == domain.StatusParsed && doc.FetchedAt.Before(cutoff) {
			delete(s.docs, id)
			deleted++
		}
	}
	return deleted, nil
}
