package llm

import (
	"context"
)

const defaultModel = "llama3.1:8b"

type Request struct {
	Model string `json:"model"`

	// Prompt is the full instruction sent to the model.
	Prompt string `json:"prompt"`

	// Options lists model-specific options (temperature, num_predict, ...).
	Options map[string]any `json:"options"`
}

// Response carries the raw model output. All parsing and validation of the
// content happens on the caller side.
type Response struct {
	Response string `json:"response"`
}

type EmbedRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Options map[string]any `json:"options,omitempty"`
}

type EmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

type Embedder interface {
	Embed(ctx context.Context, req EmbedRequest) (*EmbedResponse, error)
}
