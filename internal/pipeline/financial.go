package pipeline

import (
	"fmt"

	"github.com/sells-group/credit-cli/internal/model"
)

const (
	financialBaseline = 5.0
	financialFloor    = 3.0
)

// scoreFinancialHealth converts extracted indicator snapshots into a 0-10
// sub-score with labeled factors. It is a pure function: identical inputs
// always yield identical output.
//
// The "current" snapshot is the most recently appended one, not the one with
// the latest parsed reporting period. Append order and chronological order
// can disagree; callers upload statements in arbitrary order.
func scoreFinancialHealth(analyses []model.DocumentAnalysis) (float64, []string, []string) {
	var positive, negative []string

	if len(analyses) == 0 {
		negative = append(negative, "No financial documents were analyzed")
		return financialFloor, positive, negative
	}

	var all []model.FinancialIndicators
	for _, da := range analyses {
		all = append(all, da.Indicators...)
	}
	if len(all) == 0 {
		negative = append(negative, "No financial indicators were extracted")
		return financialFloor, positive, negative
	}

	latest := all[len(all)-1]
	score := financialBaseline

	// Profitability on assets.
	if latest.ROA != nil {
		roa := *latest.ROA
		switch {
		case roa >= 15:
			score += 1.5
			positive = append(positive, fmt.Sprintf("Excellent ROA: %.2f%%", roa))
		case roa >= 10:
			score += 1.0
			positive = append(positive, fmt.Sprintf("Good ROA: %.2f%%", roa))
		case roa >= 5:
			score += 0.5
			positive = append(positive, fmt.Sprintf("Acceptable ROA: %.2f%%", roa))
		default:
			score -= 1.0
			negative = append(negative, fmt.Sprintf("Low ROA: %.2f%%", roa))
		}
	}

	// Leverage.
	if latest.DebtToEquity != nil {
		dte := *latest.DebtToEquity
		switch {
		case dte <= 0.5:
			score += 1.0
			positive = append(positive, fmt.Sprintf("Low debt-to-equity: %.2f", dte))
		case dte <= 1.0:
			score += 0.5
			positive = append(positive, fmt.Sprintf("Controlled debt-to-equity: %.2f", dte))
		case dte <= 2.0:
			// Neutral band.
		default:
			score -= 1.5
			negative = append(negative, fmt.Sprintf("High debt-to-equity: %.2f", dte))
		}
	}

	// Liquidity.
	if cr := latest.CurrentRatio(); cr != nil {
		switch {
		case *cr >= 1.5:
			score += 0.8
			positive = append(positive, fmt.Sprintf("Strong current ratio: %.2f", *cr))
		case *cr >= 1.0:
			score += 0.3
			positive = append(positive, fmt.Sprintf("Adequate current ratio: %.2f", *cr))
		default:
			score -= 1.0
			negative = append(negative, fmt.Sprintf("Insufficient liquidity: current ratio %.2f", *cr))
		}
	}

	// Profitability on revenue.
	if margin := latest.NetMargin(); margin != nil {
		switch {
		case *margin >= 10:
			score += 1.0
			positive = append(positive, fmt.Sprintf("High net margin: %.1f%%", *margin))
		case *margin >= 5:
			score += 0.5
			positive = append(positive, fmt.Sprintf("Adequate net margin: %.1f%%", *margin))
		case *margin < 0:
			score -= 1.5
			negative = append(negative, fmt.Sprintf("Loss-making: net margin %.1f%%", *margin))
		}
	}

	return clampScore(score), positive, negative
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
