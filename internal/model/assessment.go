package model

// Recommendation is the final credit decision.
type Recommendation string

const (
	RecommendApprove Recommendation = "approve"
	RecommendReview  Recommendation = "review"
	RecommendReject  Recommendation = "reject"
)

// RiskAssessment is the scored outcome of one scoring pass. It is immutable
// once produced; retries supersede it with a fresh value.
type RiskAssessment struct {
	FinancialScore    float64        `json:"financial_score"`
	NonFinancialScore float64        `json:"non_financial_score"`
	OverallScore      float64        `json:"overall_score"`
	PositiveFactors   []string       `json:"positive_factors"`
	NegativeFactors   []string       `json:"negative_factors"`
	Recommendation    Recommendation `json:"recommendation"`
	Narrative         string         `json:"narrative"`
	Confidence        float64        `json:"confidence"`
}
