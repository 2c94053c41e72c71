package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkovac/dno-radar/internal/domain"
)

func TestRuleEngine_SectionOverride(t *testing.T) {
	engine := NewRuleEngine()

	// completely unrelated text still escalates on a severe section
	verdict := engine.Evaluate("renovación de la flota de vehículos", "AEPD")

	assert.True(t, verdict.Matched)
	assert.Equal(t, domain.LabelHighLegal, verdict.Label)
	assert.Equal(t, 0.9, verdict.Confidence)
	assert.Equal(t, domain.MethodKeywordSection, verdict.Method)
}

func TestRuleEngine_SectionOverride_Normalized(t *testing.T) {
	engine := NewRuleEngine()

	verdict := engine.Evaluate("texto irrelevante", "  cnmv ")

	assert.True(t, verdict.Matched)
	assert.Equal(t, domain.MethodKeywordSection, verdict.Method)
}

func TestRuleEngine_SectionBeatsText(t *testing.T) {
	engine := NewRuleEngine()

	// two financial-distress terms would normally yield High-Financial,
	// but the section check runs first and short-circuits text matching
	verdict := engine.Evaluate("insolvencia y quiebra inminente", "CNMC")

	assert.Equal(t, domain.LabelHighLegal, verdict.Label)
	assert.Equal(t, domain.MethodKeywordSection, verdict.Method)
}

func TestRuleEngine_PriorityOrder(t *testing.T) {
	engine := NewRuleEngine()

	// 2 corruption terms AND 2 financial terms: corruption is checked
	// first and must win
	text := "acusados de soborno y cohecho tras la insolvencia y quiebra de la sociedad"
	verdict := engine.Evaluate(text, "")

	assert.True(t, verdict.Matched)
	assert.Equal(t, domain.LabelHighLegal, verdict.Label)
	assert.Equal(t, 0.90, verdict.Confidence)
	assert.Equal(t, domain.MethodKeywordMatch, verdict.Method)
}

func TestRuleEngine_DecisionTable(t *testing.T) {
	engine := NewRuleEngine()

	tests := []struct {
		name       string
		text       string
		label      domain.RiskLabel
		confidence float64
	}{
		{
			name:       "corruption",
			text:       "trama de soborno y cohecho",
			label:      domain.LabelHighLegal,
			confidence: 0.90,
		},
		{
			name:       "financial distress",
			text:       "la insolvencia desemboca en quiebra",
			label:      domain.LabelHighFinancial,
			confidence: 0.85,
		},
		{
			name:       "regulatory sanction",
			text:       "multa por incumplimiento reiterado",
			label:      domain.LabelHighRegulatory,
			confidence: 0.85,
		},
		{
			name:       "workforce reduction",
			text:       "despido colectivo: company announces layoffs",
			label:      domain.LabelMediumOperational,
			confidence: 0.80,
		},
		{
			name:       "environmental",
			text:       "vertido tóxico y contaminación del río",
			label:      domain.LabelMediumOperational,
			confidence: 0.75,
		},
		{
			name:       "routine operational",
			text:       "nombramiento aprobado y dividendo anunciado",
			label:      domain.LabelLowOperational,
			confidence: 0.70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := engine.Evaluate(tt.text, "")

			assert.True(t, verdict.Matched)
			assert.Equal(t, tt.label, verdict.Label)
			assert.Equal(t, tt.confidence, verdict.Confidence)
			assert.Equal(t, domain.MethodKeywordMatch, verdict.Method)
		})
	}
}

func TestRuleEngine_SingleTermDoesNotEscalate(t *testing.T) {
	engine := NewRuleEngine()

	// one financial-distress term is below the >=2 threshold and lands in
	// the weak-match branch
	verdict := engine.Evaluate("concurso de acreedores", "")

	assert.True(t, verdict.Matched)
	assert.Equal(t, domain.LabelLowOther, verdict.Label)
	assert.Equal(t, 0.6, verdict.Confidence)
	assert.Equal(t, domain.MethodKeywordMatch, verdict.Method)
}

func TestRuleEngine_NoMatchesSentinel(t *testing.T) {
	engine := NewRuleEngine()

	tests := []struct {
		name string
		text string
	}{
		{"unrelated text", "la empresa inaugura una nueva sede en Valencia"},
		{"empty text", ""},
		{"whitespace only", "   \n\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := engine.Evaluate(tt.text, "")

			assert.False(t, verdict.Matched)
			assert.Equal(t, domain.LabelLowOther, verdict.Label)
			assert.Equal(t, 0.5, verdict.Confidence)
		})
	}
}

func TestRuleEngine_WholeWordMatching(t *testing.T) {
	engine := NewRuleEngine()

	// "ere" must not match inside larger words
	verdict := engine.Evaluate("los intereses generales se mantienen", "")
	assert.False(t, verdict.Matched)

	verdict = engine.Evaluate("la empresa presenta un ERE", "")
	assert.True(t, verdict.Matched)
}

func TestRuleEngine_DistinctTermsCounted(t *testing.T) {
	engine := NewRuleEngine()

	// the same term repeated counts once, staying below the >=2 threshold
	verdict := engine.Evaluate("quiebra, quiebra y otra vez quiebra", "")

	assert.Equal(t, domain.LabelLowOther, verdict.Label)
	assert.Equal(t, 0.6, verdict.Confidence)
}
