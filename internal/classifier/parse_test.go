package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkovac/dno-radar/internal/domain"
)

func TestParseLLMResponse_DirectJSON(t *testing.T) {
	raw := `{"label": "High-Legal", "confidence": 0.82, "reason": "criminal indictment of board members"}`

	result, err := parseLLMResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.LabelHighLegal, result.Label)
	assert.Equal(t, 0.82, result.Confidence)
	assert.Equal(t, domain.MethodLLMAnalysis, result.Method)
}

func TestParseLLMResponse_JSONInsideProse(t *testing.T) {
	raw := `Sure, here is my assessment of the document:
{"label": "High-Financial", "confidence": 0.7, "reason": "ongoing insolvency proceedings"}
Let me know if you need anything else.`

	result, err := parseLLMResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.LabelHighFinancial, result.Label)
	assert.Equal(t, 0.7, result.Confidence)
}

func TestParseLLMResponse_FencedCodeBlock(t *testing.T) {
	// the nested object defeats the flat-block regex, so this exercises
	// the fenced-block strategy
	raw := "```json\n{\"label\": \"Medium-Operational\", \"confidence\": 0.65, \"reason\": \"plant closure\", \"details\": {\"terms\": 3}}\n```"

	result, err := parseLLMResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.LabelMediumOperational, result.Label)
	assert.Equal(t, 0.65, result.Confidence)
}

func TestParseLLMResponse_StringConfidence(t *testing.T) {
	raw := `{"label": "Low-Other", "confidence": "0.55", "reason": "routine filing"}`

	result, err := parseLLMResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, 0.55, result.Confidence)
}

func TestParseLLMResponse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json at all", "the document looks risky to me"},
		{"unknown label", `{"label": "Catastrophic", "confidence": 0.9, "reason": "x"}`},
		{"confidence above one", `{"label": "High-Legal", "confidence": 1.5, "reason": "x"}`},
		{"negative confidence", `{"label": "High-Legal", "confidence": -0.1, "reason": "x"}`},
		{"confidence not numeric", `{"label": "High-Legal", "confidence": "high", "reason": "x"}`},
		{"missing confidence", `{"label": "High-Legal", "reason": "x"}`},
		{"missing reason", `{"label": "High-Legal", "confidence": 0.9}`},
		{"empty reason", `{"label": "High-Legal", "confidence": 0.9, "reason": "  "}`},
		{"missing label", `{"confidence": 0.9, "reason": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseLLMResponse(tt.raw)
			assert.Error(t, err)
		})
	}
}
