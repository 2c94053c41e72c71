package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkovac/dno-radar/internal/apperr"
	"github.com/dkovac/dno-radar/internal/catalog"
	"github.com/dkovac/dno-radar/internal/classifier"
	"github.com/dkovac/dno-radar/internal/domain"
	"github.com/dkovac/dno-radar/internal/landing"
	"github.com/dkovac/dno-radar/pkg/server"
)

func newTestRouter(t *testing.T) (*echo.Echo, *landing.MemStore, *catalog.MemStorer) {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()

	store := landing.NewMemStore()
	storer := catalog.NewMemStorer()
	engine := classifier.NewEngine(classifier.NewRuleEngine())

	NewRiskRouter(e, engine, store, storer, server.NewOkHealthChecker()).Bind()
	return e, store, storer
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e, _, _ := newTestRouter(t)

	rec := doRequest(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestClassify(t *testing.T) {
	e, _, _ := newTestRouter(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/classify",
		`{"title": "Condenado por soborno y cohecho", "source": "newsapi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.ClassificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, domain.LabelHighLegal, result.Label)
	assert.Equal(t, domain.MethodKeywordMatch, result.Method)
	assert.InDelta(t, 0.90, result.Confidence, 1e-9)
}

func TestClassify_EmptyBody(t *testing.T) {
	e, _, _ := newTestRouter(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/classify", `{"text": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "required")
}

func TestGetDocument(t *testing.T) {
	e, store, _ := newTestRouter(t)

	doc, _, err := store.CreateWithDedup(context.Background(), "boe", []byte(`{"title":"x"}`), map[string]any{"url": "https://e/1"})
	require.NoError(t, err)

	rec := doRequest(e, http.MethodGet, "/api/v1/documents/"+doc.RawID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DocumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, doc.RawID, resp.RawID)
	assert.Equal(t, "boe", resp.Source)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, "https://e/1", resp.Meta["url"])
	// the raw payload stays server side
	assert.NotContains(t, rec.Body.String(), "payload")
}

func TestGetDocument_NotFound(t *testing.T) {
	e, _, _ := newTestRouter(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/documents/deadbeef", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEvent(t *testing.T) {
	e, _, storer := newTestRouter(t)

	require.NoError(t, storer.Save(context.Background(), domain.Event{
		EventID: "boe:abc", Title: "t", Text: "x", Source: "boe",
	}))

	rec := doRequest(e, http.MethodGet, "/api/v1/events/boe:abc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var event domain.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &event))
	assert.Equal(t, "boe:abc", event.EventID)
}

func TestGetEvent_NotFound(t *testing.T) {
	e, _, _ := newTestRouter(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/events/boe:missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
