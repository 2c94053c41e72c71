package writer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkovac/dno-radar/internal/catalog"
	"github.com/dkovac/dno-radar/internal/domain"
)

func TestRouterSink_Dispatch(t *testing.T) {
	events := NewMemSink()
	index := NewMemSink()
	router := NewRouterSink().
		Route(TableEvents, events).
		Route(TableIndex, index)
	ctx := context.Background()

	require.NoError(t, router.InsertBatch(ctx, TableEvents, []any{"a"}))
	require.NoError(t, router.InsertBatch(ctx, TableIndex, []any{"b"}))

	assert.Equal(t, []any{"a"}, events.Records(TableEvents))
	assert.Equal(t, []any{"b"}, index.Records(TableIndex))
}

func TestRouterSink_UnroutedTable(t *testing.T) {
	router := NewRouterSink()

	err := router.InsertBatch(context.Background(), "nowhere", []any{"a"})
	assert.Error(t, err)
}

func TestCatalogSink_InsertBatch(t *testing.T) {
	storer := catalog.NewMemStorer()
	sink := NewCatalogSink(storer)
	ctx := context.Background()

	records := []any{
		domain.Event{EventID: "boe:1", Title: "uno"},
		domain.Event{EventID: "boe:2", Title: "dos"},
	}
	require.NoError(t, sink.InsertBatch(ctx, TableEvents, records))

	event, err := storer.Get(ctx, "boe:1")
	require.NoError(t, err)
	assert.Equal(t, "uno", event.Title)
}

func TestCatalogSink_RejectsForeignRecords(t *testing.T) {
	sink := NewCatalogSink(catalog.NewMemStorer())

	err := sink.InsertBatch(context.Background(), TableEvents, []any{"not an event"})
	assert.Error(t, err)
}
