package writer

import (
	"context"
	"fmt"
)

// RouterSink dispatches each table to its own destination sink, so one
// writer instance can feed the catalog and the search index.
type RouterSink struct {
	routes map[string]Sink
}

func NewRouterSink() *RouterSink {
	return &RouterSink{routes: make(map[string]Sink)}
}

func (r *RouterSink) Route(table string, sink Sink) *RouterSink {
	r.routes[table] = sink
	return r
}

func (r *RouterSink) InsertBatch(ctx context.Context, table string, records []any) error {
	sink, ok := r.routes[table]
	if !ok {
		return fmt.Errorf("no sink routed for table %q", table)
	}
	return sink.InsertBatch(ctx, table, records)
}
