package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultAdapterTimeout = 30 * time.Second

// GenericAdapter is the single fetch implementation behind every
// configured source. Per-outlet differences (base URL, feed categories,
// response field names, date format) live entirely in SourceConfig.
type GenericAdapter struct {
	config SourceConfig
	http   *http.Client
}

type GenericAdapterOption func(*GenericAdapter)

func WithAdapterHTTPClient(client *http.Client) GenericAdapterOption {
	return func(a *GenericAdapter) {
		a.http = client
	}
}

func NewGenericAdapter(config SourceConfig, opts ...GenericAdapterOption) *GenericAdapter {
	timeout := defaultAdapterTimeout
	if config.TimeoutSeconds > 0 {
		timeout = time.Duration(config.TimeoutSeconds) * time.Second
	}

	a := &GenericAdapter{
		config: config,
		http:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *GenericAdapter) Name() string {
	return a.config.Name
}

// Search fetches every configured feed. A failing feed contributes to the
// error list and never aborts the remaining feeds.
func (a *GenericAdapter) Search(ctx context.Context, q Query) (Result, error) {
	result := Result{
		Summary: Summary{Query: q.Term},
	}

	feeds := a.config.Feeds
	if len(feeds) == 0 {
		feeds = []string{""}
	}

	for _, feed := range feeds {
		items, err := a.fetchFeed(ctx, feed, q)
		if err != nil {
			result.Summary.Errors = append(result.Summary.Errors, fmt.Sprintf("%s: %v", feed, err))
			continue
		}
		result.Items = append(result.Items, items...)
	}

	result.Summary.TotalResults = len(result.Items)
	return result, nil
}

func (a *GenericAdapter) fetchFeed(ctx context.Context, feed string, q Query) ([]RawItem, error) {
	reqURL, err := a.buildURL(feed, q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	rawItems, ok := payload[a.config.Fields.Items].([]any)
	if !ok {
		return nil, fmt.Errorf("response has no %q array", a.config.Fields.Items)
	}

	items := make([]RawItem, 0, len(rawItems))
	for _, raw := range rawItems {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, a.mapItem(obj, feed))
	}
	return items, nil
}

func (a *GenericAdapter) buildURL(feed string, q Query) (string, error) {
	base, err := url.Parse(a.config.BaseURL)
	if err != nil {
		return "", err
	}
	if feed != "" {
		base = base.JoinPath(feed)
	}

	params := base.Query()
	if q.Term != "" {
		params.Set("q", q.Term)
	}
	from, to := q.From, q.To
	if from.IsZero() && q.DaysBack > 0 {
		from = time.Now().AddDate(0, 0, -q.DaysBack)
	}
	if !from.IsZero() {
		params.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		params.Set("to", to.Format("2006-01-02"))
	}
	base.RawQuery = params.Encode()

	return base.String(), nil
}

func (a *GenericAdapter) mapItem(obj map[string]any, feed string) RawItem {
	item := RawItem{
		Title:   stringField(obj, a.config.Fields.Title),
		URL:     stringField(obj, a.config.Fields.URL),
		Body:    stringField(obj, a.config.Fields.Body),
		Section: stringField(obj, a.config.Fields.Section),
		Extra:   map[string]any{"feed": feed},
	}

	if published := stringField(obj, a.config.Fields.Published); published != "" {
		format := a.config.DateFormat
		if format == "" {
			format = time.RFC3339
		}
		if ts, err := time.Parse(format, published); err == nil {
			item.Published = ts
		} else {
			item.Extra["published_raw"] = published
		}
	}

	// keep unmapped fields, schema varies by source
	for key, value := range obj {
		switch key {
		case a.config.Fields.Title, a.config.Fields.URL, a.config.Fields.Body,
			a.config.Fields.Section, a.config.Fields.Published:
		default:
			item.Extra[key] = value
		}
	}

	return item
}

func stringField(obj map[string]any, key string) string {
	if key == "" {
		return ""
	}
	value, _ := obj[key].(string)
	return value
}
