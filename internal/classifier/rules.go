package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dkovac/dno-radar/internal/domain"
)

// Verdict is the keyword layer's output. Matched=false marks the
// "no opinion" sentinel: the embedded result is only a fallback and the
// caller is free to escalate to a costlier layer.
type Verdict struct {
	domain.ClassificationResult
	Matched bool
}

// RuleEngine maps free text to a risk category using fixed per-category
// vocabularies. Pure: no side effects, safe for concurrent use.
type RuleEngine struct {
	patterns map[Category][]*regexp.Regexp
}

func NewRuleEngine() *RuleEngine {
	patterns := make(map[Category][]*regexp.Regexp, len(Vocabularies))
	for cat, terms := range Vocabularies {
		compiled := make([]*regexp.Regexp, 0, len(terms))
		for _, term := range terms {
			// whole-word, case-insensitive; phrases match as-is
			compiled = append(compiled, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`\b`))
		}
		patterns[cat] = compiled
	}
	return &RuleEngine{patterns: patterns}
}

// decisionTable is checked in this exact order; the first row whose
// category reached its threshold wins.
var decisionTable = []struct {
	category   Category
	threshold  int
	label      domain.RiskLabel
	confidence float64
}{
	{CategoryCorruption, 2, domain.LabelHighLegal, 0.90},
	{CategoryFinancial, 2, domain.LabelHighFinancial, 0.85},
	{CategoryRegulatory, 2, domain.LabelHighRegulatory, 0.85},
	{CategoryDismissals, 2, domain.LabelMediumOperational, 0.80},
	{CategoryEnvironmental, 2, domain.LabelMediumOperational, 0.75},
	{CategoryOperational, 2, domain.LabelLowOperational, 0.70},
}

// categoryOrder fixes the scan order for the weak-match fallback so the
// reported category does not depend on map iteration.
var categoryOrder = []Category{
	CategoryCorruption, CategoryFinancial, CategoryRegulatory,
	CategoryDismissals, CategoryEnvironmental, CategoryOperational,
	CategoryShareholding,
}

// Evaluate runs the section override and then the keyword decision table.
// The section check short-circuits all text matching.
func (e *RuleEngine) Evaluate(text, section string) Verdict {
	if sec := strings.ToUpper(strings.TrimSpace(section)); sec != "" && SevereSections[sec] {
		return Verdict{
			ClassificationResult: domain.ClassificationResult{
				Label:      domain.LabelHighLegal,
				Confidence: 0.9,
				Reason:     fmt.Sprintf("severe regulatory section %s", sec),
				Method:     domain.MethodKeywordSection,
			},
			Matched: true,
		}
	}

	counts := e.countMatches(text)

	for _, row := range decisionTable {
		if counts[row.category] >= row.threshold {
			return Verdict{
				ClassificationResult: domain.ClassificationResult{
					Label:      row.label,
					Confidence: row.confidence,
					Reason:     fmt.Sprintf("%d distinct %s terms matched", counts[row.category], row.category),
					Method:     domain.MethodKeywordMatch,
				},
				Matched: true,
			}
		}
	}

	for _, cat := range categoryOrder {
		if counts[cat] >= 1 {
			return Verdict{
				ClassificationResult: domain.ClassificationResult{
					Label:      domain.LabelLowOther,
					Confidence: 0.6,
					Reason:     fmt.Sprintf("weak keyword signal (%s)", cat),
					Method:     domain.MethodKeywordMatch,
				},
				Matched: true,
			}
		}
	}

	return Verdict{
		ClassificationResult: domain.ClassificationResult{
			Label:      domain.LabelLowOther,
			Confidence: 0.5,
			Reason:     "no high-risk pattern",
			Method:     domain.MethodKeywordMatch,
		},
		Matched: false,
	}
}

// countMatches counts distinct matched terms per category.
func (e *RuleEngine) countMatches(text string) map[Category]int {
	counts := make(map[Category]int, len(e.patterns))
	if strings.TrimSpace(text) == "" {
		return counts
	}
	for cat, patterns := range e.patterns {
		for _, p := range patterns {
			if p.MatchString(text) {
				counts[cat]++
			}
		}
	}
	return counts
}
