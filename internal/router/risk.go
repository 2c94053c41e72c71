package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dkovac/dno-radar/internal/apperr"
	"github.com/dkovac/dno-radar/internal/catalog"
	"github.com/dkovac/dno-radar/internal/classifier"
	"github.com/dkovac/dno-radar/internal/landing"
	"github.com/dkovac/dno-radar/pkg/server"
)

// RiskRouter exposes the classification engine and both stores over HTTP.
type RiskRouter struct {
	e      *echo.Echo
	engine *classifier.Engine
	store  landing.Store
	storer catalog.Storer
	health server.HealthChecker
}

func NewRiskRouter(e *echo.Echo, engine *classifier.Engine, store landing.Store, storer catalog.Storer, health server.HealthChecker) *RiskRouter {
	return &RiskRouter{
		e:      e,
		engine: engine,
		store:  store,
		storer: storer,
		health: health,
	}
}

func (r *RiskRouter) Bind() {
	r.e.GET("/health", r.healthHandler)

	v1 := r.e.Group("/api/v1")
	v1.POST("/classify", r.classifyHandler)
	v1.GET("/documents/:id", r.documentHandler)
	v1.GET("/events/:id", r.eventHandler)
}

type ClassifyRequest struct {
	Text    string `json:"text"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	Section string `json:"section"`
}

// DocumentResponse is the landing-zone record without its raw payload.
type DocumentResponse struct {
	RawID     string         `json:"rawId"`
	Source    string         `json:"source"`
	Status    string         `json:"status"`
	Retries   int            `json:"retries"`
	Meta      map[string]any `json:"meta,omitempty"`
	FetchedAt time.Time      `json:"fetchedAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (r *RiskRouter) healthHandler(c echo.Context) error {
	if !r.health.Healthy(c.Request().Context()) {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (r *RiskRouter) classifyHandler(c echo.Context) error {
	var req ClassifyRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid request body", err)
	}
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.Title) == "" {
		return apperr.NewValidation("text or title is required")
	}

	result := r.engine.Classify(c.Request().Context(), classifier.Request{
		Text:    req.Text,
		Title:   req.Title,
		Source:  req.Source,
		Section: req.Section,
	})
	return c.JSON(http.StatusOK, result)
}

func (r *RiskRouter) documentHandler(c echo.Context) error {
	doc, err := r.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, DocumentResponse{
		RawID:     doc.RawID,
		Source:    doc.Source,
		Status:    string(doc.Status),
		Retries:   doc.Retries,
		Meta:      doc.Meta,
		FetchedAt: doc.FetchedAt,
		UpdatedAt: doc.UpdatedAt,
	})
}

func (r *RiskRouter) eventHandler(c echo.Context) error {
	event, err := r.storer.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}
