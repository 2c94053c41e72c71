package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dkovac/dno-radar/internal/apperr"
	"github.com/dkovac/dno-radar/internal/domain"
)

// MemStorer keeps events in memory, mirroring the Postgres semantics.
type MemStorer struct {
	mu     sync.RWMutex
	events map[string]domain.Event
}

func NewMemStorer() *MemStorer {
	return &MemStorer{events: make(map[string]domain.Event)}
}

func (s *MemStorer) Save(ctx context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.EventID]; ok {
		return nil
	}
	s.events[event.EventID] = event
	return nil
}

func (s *MemStorer) SaveBulk(ctx context.Context, events []domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, event := range events {
		if _, ok := s.events[event.EventID]; ok {
			continue
		}
		s.events[event.EventID] = event
	}
	return nil
}

func (s *MemStorer) Get(ctx context.Context, eventID string) (domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[eventID]
	if !ok {
		return domain.Event{}, apperr.NewNotFound("event", eventID)
	}
	return event, nil
}

func (s *MemStorer) SetClassification(ctx context.Context, eventID string, result domain.ClassificationResult, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return apperr.NewNotFound("event", eventID)
	}

	label := result.Label
	reason := result.Reason
	confidence := result.Confidence
	event.RiskLabel = &label
	event.Rationale = &reason
	event.Confidence = &confidence
	event.ClassifierTS = &ts
	s.events[eventID] = event
	return nil
}

func (s *MemStorer) SetEmbedding(ctx context.Context, eventID, embedding, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return apperr.NewNotFound("event", eventID)
	}

	event.Embedding = &embedding
	event.EmbeddingModel = &model
	s.events[eventID] = event
	return nil
}

func (s *MemStorer) ListUnclassified(ctx context.Context, limit int) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []domain.Event
	for _, event := range s.events {
		if event.RiskLabel == nil {
			events = append(events, event)
		}
	}
	return sortAndLimit(events, limit), nil
}

func (s *MemStorer) ListUnembedded(ctx context.Context, limit int) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []domain.Event
	for _, event := range s.events {
		if event.Classified() && event.Embedding == nil {
			events = append(events, event)
		}
	}
	return sortAndLimit(events, limit), nil
}

func sortAndLimit(events []domain.Event, limit int) []domain.Event {
	sort.Slice(events, func(i, j int) bool {
		return events[i].EventID < events[j].EventID
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events
}
