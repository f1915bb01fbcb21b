package model

// QualityStatus is the outcome of the quality gate.
type QualityStatus string

const (
	QualityApproved QualityStatus = "approved"
	QualityRejected QualityStatus = "rejected"
)

// Named consistency checks run by the quality gate.
const (
	CheckCompanyDataAvailable   = "company_data_available"
	CheckTaxIDConsistency       = "tax_id_consistency"
	CheckAssessmentPresent      = "risk_assessment_present"
	CheckScoresInRange          = "scores_in_valid_range"
	CheckRecommendationLogic    = "recommendation_logic_consistent"
	CheckFactorsHaveEvidence    = "factors_have_evidence"
	CheckNarrativeQuality       = "analysis_text_quality"
	CheckFinancialDataAvailable = "financial_data_available"
)

// QualityReport is produced by the quality gate once per pipeline pass.
type QualityReport struct {
	Status   QualityStatus   `json:"status"`
	Checks   map[string]bool `json:"checks"`
	Feedback string          `json:"feedback,omitempty"`
	Notes    []string        `json:"notes,omitempty"`
}
