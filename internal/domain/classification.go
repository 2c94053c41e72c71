package domain

// RiskLabel is the closed set of D&O risk categories.
type RiskLabel string

const (
	LabelHighLegal         RiskLabel = "High-Legal"
	LabelHighFinancial     RiskLabel = "High-Financial"
	LabelHighRegulatory    RiskLabel = "High-Regulatory"
	LabelMediumOperational RiskLabel = "Medium-Operational"
	LabelLowOperational    RiskLabel = "Low-Operational"
	LabelLowOther          RiskLabel = "Low-Other"
)

// RiskLabels lists every valid label, in severity order.
var RiskLabels = []RiskLabel{
	LabelHighLegal,
	LabelHighFinancial,
	LabelHighRegulatory,
	LabelMediumOperational,
	LabelLowOperational,
	LabelLowOther,
}

func (l RiskLabel) Valid() bool {
	for _, known := range RiskLabels {
		if l == known {
			return true
		}
	}
	return false
}

// Method identifies which classifier layer produced a result.
type Method string

const (
	MethodKeywordSection Method = "keyword_section"
	MethodKeywordMatch   Method = "keyword_match"
	MethodLLMAnalysis    Method = "llm_analysis"
	MethodDefault        Method = "default"
)

// ClassificationResult is the transient output of the classification
// engine, folded into an Event by the caller.
type ClassificationResult struct {
	Label      RiskLabel `json:"label"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
	Method     Method    `json:"method"`
}
