package pipeline

import "github.com/sells-group/credit-cli/internal/model"

const (
	financialRejectFloor    = 2.0
	nonFinancialRejectFloor = 3.0
	approveThreshold        = 7.5
	reviewThreshold         = 5.5

	financialWeight    = 0.7
	nonFinancialWeight = 0.3
)

// combineScores produces the weighted overall score from the two sub-scores.
func combineScores(financial, nonFinancial float64) float64 {
	return financialWeight*financial + nonFinancialWeight*nonFinancial
}

// resolveRecommendation maps scores to a decision. Sub-score floors take
// precedence over the overall score: a critically weak dimension rejects even
// when the weighted total clears the approval bar. The quality gate re-derives
// the decision with this same function when checking consistency.
func resolveRecommendation(financial, nonFinancial, overall float64) model.Recommendation {
	if financial <= financialRejectFloor {
		return model.RecommendReject
	}
	if nonFinancial <= nonFinancialRejectFloor {
		return model.RecommendReject
	}
	if overall >= approveThreshold {
		return model.RecommendApprove
	}
	if overall >= reviewThreshold {
		return model.RecommendReview
	}
	return model.RecommendReject
}
