package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/credit-cli/internal/model"
)

func TestResolveRecommendation_Precedence(t *testing.T) {
	tests := []struct {
		name         string
		financial    float64
		nonFinancial float64
		overall      float64
		want         model.Recommendation
	}{
		{"financial floor overrides high overall", 1.0, 9.0, 9.0, model.RecommendReject},
		{"non-financial floor overrides high overall", 8.0, 2.5, 7.8, model.RecommendReject},
		{"approve above threshold", 7.0, 8.0, 7.6, model.RecommendApprove},
		{"review in middle band", 6.0, 6.0, 6.0, model.RecommendReview},
		{"reject below review band", 4.0, 4.0, 4.0, model.RecommendReject},
		{"approve at exact threshold", 8.0, 6.5, 7.5, model.RecommendApprove},
		{"review at exact threshold", 5.5, 5.5, 5.5, model.RecommendReview},
		{"financial floor inclusive", 2.0, 9.0, 8.0, model.RecommendReject},
		{"non-financial floor inclusive", 9.0, 3.0, 8.0, model.RecommendReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveRecommendation(tt.financial, tt.nonFinancial, tt.overall)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCombineScores_Weighting(t *testing.T) {
	assert.InDelta(t, 7.6, combineScores(8.0, 6.666666666666667), 0.01)
	assert.Equal(t, 0.0, combineScores(0, 0))
	assert.Equal(t, 10.0, combineScores(10, 10))
	assert.InDelta(t, 5.9, combineScores(5.0, 8.0), 1e-9)
}
