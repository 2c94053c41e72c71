package classifier

// Category identifies one keyword vocabulary.
type Category string

const (
	CategoryCorruption    Category = "corruption"
	CategoryFinancial     Category = "financial_distress"
	CategoryShareholding  Category = "shareholding_change"
	CategoryRegulatory    Category = "regulatory_sanction"
	CategoryDismissals    Category = "workforce_reduction"
	CategoryEnvironmental Category = "environmental"
	CategoryOperational   Category = "operational"
)

// Vocabularies maps each category to its term list. Terms are matched as
// whole words, case-insensitively; multi-word terms match as phrases.
// Spanish first (gazette and regulator sources), English for wire sources.
var Vocabularies = map[Category][]string{
	CategoryCorruption: {
		"soborno", "cohecho", "corrupción", "malversación",
		"blanqueo de capitales", "prevaricación", "fraude", "trama",
		"bribery", "corruption", "embezzlement", "money laundering",
		"kickback", "fraud",
	},
	CategoryFinancial: {
		"concurso de acreedores", "insolvencia", "quiebra",
		"suspensión de pagos", "preconcurso", "impago", "liquidación",
		"administración concursal",
		"bankruptcy", "insolvency", "default", "receivership",
	},
	CategoryShareholding: {
		"opa", "ampliación de capital", "venta de participaciones",
		"cambio accionarial", "fusión", "adquisición",
		"takeover", "merger", "acquisition", "controlling stake",
	},
	CategoryRegulatory: {
		"sanción", "multa", "expediente sancionador", "infracción",
		"incumplimiento", "requerimiento", "inhabilitación",
		"sanction", "fine", "penalty", "regulatory breach", "investigation",
	},
	CategoryDismissals: {
		"ere", "erte", "despido colectivo", "regulación de empleo",
		"despidos", "recorte de plantilla",
		"layoffs", "redundancies", "downsizing", "job cuts",
	},
	CategoryEnvironmental: {
		"vertido", "contaminación", "delito ecológico",
		"sanción ambiental", "emisiones", "residuos",
		"pollution", "spill", "environmental damage", "contamination",
	},
	CategoryOperational: {
		"nombramiento", "junta general", "resultados trimestrales",
		"dividendo", "consejo de administración", "contrato",
		"appointment", "quarterly results", "dividend", "board meeting",
	},
}

// SevereSections are source section codes from regulators whose filings are
// High-Legal regardless of wording. Checked before any text matching.
var SevereSections = map[string]bool{
	"JUS":             true, // justice
	"JUSTICIA":        true,
	"CNMC":            true, // competition authority
	"AEPD":            true, // data protection authority
	"CNMV":            true, // securities regulator
	"BDE":             true, // central bank
	"BANCO DE ESPAÑA": true,
	"DGSFP":           true, // insurance regulator
	"SEPBLAC":         true, // anti-money-laundering authority
}
