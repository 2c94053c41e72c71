package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dkovac/dno-radar/internal/domain"
	"github.com/dkovac/dno-radar/internal/llm"
)

const defaultPromptBudget = 1500

// Request is one classification input. Everything except Text is optional;
// empty inputs are legal and simply fall through the keyword gate.
type Request struct {
	Text    string `json:"text"`
	Title   string `json:"title,omitempty"`
	Source  string `json:"source,omitempty"`
	Section string `json:"section,omitempty"`
}

// Engine is the single entry point for risk classification. It chains a
// keyword gate, an optional LLM fallback and a fixed default. It never
// returns an error: model and transport failures degrade to the default
// label.
type Engine struct {
	rules *RuleEngine

	llm          llm.Client
	model        string
	llmTimeout   time.Duration
	promptBudget int
}

type EngineOption func(*Engine)

// WithLLM enables the model fallback for documents the keyword gate has no
// opinion on.
func WithLLM(client llm.Client, model string) EngineOption {
	return func(e *Engine) {
		e.llm = client
		e.model = model
	}
}

func WithLLMTimeout(timeout time.Duration) EngineOption {
	return func(e *Engine) {
		e.llmTimeout = timeout
	}
}

func WithPromptBudget(chars int) EngineOption {
	return func(e *Engine) {
		e.promptBudget = chars
	}
}

func NewEngine(rules *RuleEngine, opts ...EngineOption) *Engine {
	e := &Engine{
		rules:        rules,
		llmTimeout:   90 * time.Second,
		promptBudget: defaultPromptBudget,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Classify runs keyword gate -> LLM fallback -> default.
func (e *Engine) Classify(ctx context.Context, req Request) domain.ClassificationResult {
	combined := strings.TrimSpace(req.Title + "\n" + req.Text)

	verdict := e.rules.Evaluate(combined, req.Section)
	if verdict.Matched {
		return verdict.ClassificationResult
	}

	if e.llm == nil {
		return defaultResult()
	}

	result, err := e.classifyWithLLM(ctx, req)
	if err != nil {
		slog.Warn("discarding LLM result, falling back to default",
			"source", req.Source, "error", err)
		return defaultResult()
	}
	return result
}

func (e *Engine) classifyWithLLM(ctx context.Context, req Request) (domain.ClassificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.llmTimeout)
	defer cancel()

	resp, err := e.llm.Generate(ctx, llm.Request{
		Model:  e.model,
		Prompt: buildPrompt(req.Title, truncate(req.Text, e.promptBudget)),
		Options: map[string]any{
			// pinned for determinism
			"temperature": 0,
		},
	})
	if err != nil {
		return domain.ClassificationResult{}, err
	}

	return parseLLMResponse(resp.Response)
}

func defaultResult() domain.ClassificationResult {
	return domain.ClassificationResult{
		Label:      domain.LabelLowOther,
		Confidence: 0.6,
		Reason:     "no high-risk pattern detected",
		Method:     domain.MethodDefault,
	}
}

func buildPrompt(title, text string) string {
	labels := make([]string, len(domain.RiskLabels))
	for i, l := range domain.RiskLabels {
		labels[i] = string(l)
	}

	return fmt.Sprintf(`You are a director-and-officer (D&O) risk analyst for corporate insurance underwriting.
Classify the following document into exactly one of these risk categories: %s.

Title: %s

Text: %s

Respond with a single JSON object and nothing else:
{"label": "<one of the categories>", "confidence": <number between 0 and 1>, "reason": "<one short sentence>"}`,
		strings.Join(labels, ", "), title, text)
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
