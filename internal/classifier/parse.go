package classifier

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dkovac/dno-radar/internal/apperr"
	"github.com/dkovac/dno-radar/internal/domain"
)

var (
	// flat {...} object that carries a "label" key
	jsonBlockRe = regexp.MustCompile(`(?s)\{[^{}]*"label"[^{}]*\}`)
	// ```json ... ``` or plain ``` ... ```
	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
)

// parseLLMResponse turns a raw model response into a validated
// classification result. Extraction strategies, in order: direct JSON parse
// of the trimmed response; first {...} block containing a "label" key;
// fenced code block. The first strategy yielding valid JSON wins.
func parseLLMResponse(raw string) (domain.ClassificationResult, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		return domain.ClassificationResult{}, err
	}
	return validateVerdict(obj)
}

func extractJSON(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
		return obj, nil
	}

	if block := jsonBlockRe.FindString(trimmed); block != "" {
		if err := json.Unmarshal([]byte(block), &obj); err == nil {
			return obj, nil
		}
	}

	if m := fencedBlockRe.FindStringSubmatch(trimmed); len(m) == 2 {
		if err := json.Unmarshal([]byte(m[1]), &obj); err == nil {
			return obj, nil
		}
	}

	return nil, apperr.NewValidation("no JSON object in model response")
}

func validateVerdict(obj map[string]any) (domain.ClassificationResult, error) {
	labelRaw, ok := obj["label"].(string)
	if !ok {
		return domain.ClassificationResult{}, apperr.NewValidation("missing label")
	}
	label := domain.RiskLabel(strings.TrimSpace(labelRaw))
	if !label.Valid() {
		return domain.ClassificationResult{}, apperr.NewValidation(fmt.Sprintf("unknown label %q", labelRaw))
	}

	reason, ok := obj["reason"].(string)
	if !ok || strings.TrimSpace(reason) == "" {
		return domain.ClassificationResult{}, apperr.NewValidation("missing reason")
	}

	confidence, err := parseConfidence(obj["confidence"])
	if err != nil {
		return domain.ClassificationResult{}, err
	}

	return domain.ClassificationResult{
		Label:      label,
		Confidence: confidence,
		Reason:     strings.TrimSpace(reason),
		Method:     domain.MethodLLMAnalysis,
	}, nil
}

// parseConfidence accepts numbers and numeric strings; models are sloppy
// about which one they emit.
func parseConfidence(v any) (float64, error) {
	var conf float64
	switch c := v.(type) {
	case float64:
		conf = c
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return 0, apperr.NewValidationWrap("confidence is not a number", err)
		}
		conf = parsed
	default:
		return 0, apperr.NewValidation("missing confidence")
	}

	if conf < 0 || conf > 1 {
		return 0, apperr.NewValidation(fmt.Sprintf("confidence %v out of [0,1]", conf))
	}
	return conf, nil
}
