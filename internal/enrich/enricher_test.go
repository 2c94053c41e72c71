package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkovac/dno-radar/internal/catalog"
	"github.com/dkovac/dno-radar/internal/domain"
	"github.com/dkovac/dno-radar/internal/llm"
)

type stubEmbedder struct {
	calls   int
	failFor map[string]error
	vector  []float32
}

func (s *stubEmbedder) Embed(_ context.Context, req llm.EmbedRequest) (*llm.EmbedResponse, error) {
	s.calls++
	if err, ok := s.failFor[req.Prompt]; ok {
		return nil, err
	}
	return &llm.EmbedResponse{Embedding: s.vector}, nil
}

func classifiedEvent(t *testing.T, storer *catalog.MemStorer, id, title string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, storer.Save(ctx, domain.Event{EventID: id, Title: title, Text: "cuerpo", Source: "boe"}))
	require.NoError(t, storer.SetClassification(ctx, id, domain.ClassificationResult{
		Label:      domain.LabelLowOther,
		Confidence: 0.6,
		Reason:     "weak keyword match",
		Method:     domain.MethodKeywordMatch,
	}, time.Now()))
}

func TestEnricher_Run(t *testing.T) {
	storer := catalog.NewMemStorer()
	classifiedEvent(t, storer, "boe:a", "primero")
	classifiedEvent(t, storer, "boe:b", "segundo")

	embedder := &stubEmbedder{vector: []float32{0.1, 0.2}}
	enricher := New(embedder, storer, WithModel("nomic-embed-text"))

	n, err := enricher.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, embedder.calls)

	event, err := storer.Get(context.Background(), "boe:a")
	require.NoError(t, err)
	require.NotNil(t, event.Embedding)
	assert.Equal(t, "[0.1,0.2]", *event.Embedding)
	require.NotNil(t, event.EmbeddingModel)
	assert.Equal(t, "nomic-embed-text", *event.EmbeddingModel)

	// second run finds nothing left to do
	n, err = enricher.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, embedder.calls)
}

func TestEnricher_SkipsUnclassified(t *testing.T) {
	storer := catalog.NewMemStorer()
	require.NoError(t, storer.Save(context.Background(), domain.Event{
		EventID: "boe:raw", Title: "sin clasificar", Text: "x", Source: "boe",
	}))

	embedder := &stubEmbedder{vector: []float32{1}}
	n, err := New(embedder, storer).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, embedder.calls)
}

func TestEnricher_FailureSkipsEvent(t *testing.T) {
	storer := catalog.NewMemStorer()
	classifiedEvent(t, storer, "boe:a", "fallará")
	classifiedEvent(t, storer, "boe:b", "pasará")

	embedder := &stubEmbedder{
		vector:  []float32{1},
		failFor: map[string]error{"fallará\ncuerpo": errors.New("model overloaded")},
	}

	n, err := New(embedder, storer).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	failed, err := storer.Get(context.Background(), "boe:a")
	require.NoError(t, err)
	assert.Nil(t, failed.Embedding, "failed event stays a candidate for the next run")
}
