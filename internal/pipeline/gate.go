package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/extract"
	"github.com/sells-group/credit-cli/internal/model"
	"github.com/sells-group/credit-cli/pkg/anthropic"
)

var criticalChecks = []string{
	model.CheckAssessmentPresent,
	model.CheckScoresInRange,
	model.CheckRecommendationLogic,
}

var importantChecks = []string{
	model.CheckCompanyDataAvailable,
	model.CheckTaxIDConsistency,
	model.CheckFactorsHaveEvidence,
	model.CheckNarrativeQuality,
}

// validate runs the consistency checks over a scored state and resolves an
// overall verdict. Any critical check failing rejects outright; otherwise a
// strict majority of failing important checks rejects.
func (p *Pipeline) validate(ctx context.Context, st *model.AnalysisState) *model.QualityReport {
	checks := runChecks(st)

	status := model.QualityApproved
	for _, name := range criticalChecks {
		if !checks[name] {
			status = model.QualityRejected
			break
		}
	}
	if status == model.QualityApproved {
		failed := 0
		for _, name := range importantChecks {
			if !checks[name] {
				failed++
			}
		}
		if failed > len(importantChecks)/2 {
			status = model.QualityRejected
		}
	}

	report := &model.QualityReport{
		Status: status,
		Checks: checks,
		Notes:  validationNotes(checks),
	}
	if status == model.QualityRejected {
		report.Feedback = p.generateFeedback(ctx, st, checks)
	}
	return report
}

func runChecks(st *model.AnalysisState) map[string]bool {
	checks := make(map[string]bool, 8)

	checks[model.CheckCompanyDataAvailable] = st.Company != nil

	if st.Company != nil {
		checks[model.CheckTaxIDConsistency] = digitsOf(st.TaxID) == digitsOf(st.Company.TaxID)
	} else {
		checks[model.CheckTaxIDConsistency] = false
	}

	checks[model.CheckAssessmentPresent] = st.Assessment != nil

	if ra := st.Assessment; ra != nil {
		checks[model.CheckScoresInRange] = inRange(ra.FinancialScore) &&
			inRange(ra.NonFinancialScore) &&
			inRange(ra.OverallScore)
		checks[model.CheckRecommendationLogic] = ra.Recommendation ==
			resolveRecommendation(ra.FinancialScore, ra.NonFinancialScore, ra.OverallScore)
		checks[model.CheckFactorsHaveEvidence] = checkFactorEvidence(st)
		checks[model.CheckNarrativeQuality] = checkNarrative(st)
	} else {
		checks[model.CheckScoresInRange] = false
		checks[model.CheckRecommendationLogic] = false
		checks[model.CheckFactorsHaveEvidence] = false
		checks[model.CheckNarrativeQuality] = false
	}

	checks[model.CheckFinancialDataAvailable] = st.IndicatorCount() > 0

	return checks
}

func inRange(score float64) bool {
	return score >= 0 && score <= 10
}

// checkFactorEvidence fails when a negative factor claims something no
// collected evidence can back: ratio language without any document analysis,
// or legal language without any web-search results.
func checkFactorEvidence(st *model.AnalysisState) bool {
	ratioTerms := []string{"roa", "debt-to-equity", "liquidity", "margin"}
	legalTerms := []string{"legal", "processo", "lawsuit"}

	for _, factor := range st.Assessment.NegativeFactors {
		folded := extract.Fold(factor)
		if matchesAny(folded, ratioTerms) && len(st.DocumentAnalyses) == 0 {
			return false
		}
		if matchesAny(folded, legalTerms) && len(st.SearchResults) == 0 {
			return false
		}
	}
	return true
}

// checkNarrative enforces minimal prose quality: long enough, several
// sentences, and anchored to the subject company.
func checkNarrative(st *model.AnalysisState) bool {
	text := st.Assessment.Narrative
	if len(text) < 100 {
		return false
	}
	marks := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
	if marks < 3 {
		return false
	}
	if strings.Contains(text, st.TaxID) {
		return true
	}
	if st.Company != nil && st.Company.CorporateName != "" {
		return strings.Contains(extract.Fold(text), extract.Fold(st.Company.CorporateName))
	}
	return false
}

const feedbackSystemPrompt = `You are a quality reviewer for credit risk assessments. ` +
	`Write constructive feedback for an analysis that failed validation. Be specific about the ` +
	`problems, suggest practical corrections, and keep it under 200 words. Respond with the ` +
	`feedback text only.`

// generateFeedback produces the corrective text carried into the next scoring
// attempt. It degrades to a deterministic listing of failed check names when
// the LLM is unavailable.
func (p *Pipeline) generateFeedback(ctx context.Context, st *model.AnalysisState, checks map[string]bool) string {
	failed := failedCheckNames(checks)

	if p.llm != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "A credit risk assessment failed these quality checks: %s.\n\n", strings.Join(failed, ", "))
		fmt.Fprintf(&b, "Available evidence: registry data: %t, documents analyzed: %d, web results: %d.\n",
			st.Company != nil, len(st.DocumentAnalyses), len(st.SearchResults))
		b.WriteString("\nWrite specific feedback for correcting these problems.")

		resp, err := p.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     p.cfg.Anthropic.Model,
			MaxTokens: p.cfg.Anthropic.MaxTokens,
			System:    feedbackSystemPrompt,
			Messages: []anthropic.Message{
				{Role: "user", Content: b.String()},
			},
		})
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			return strings.TrimSpace(resp.Text)
		}
		if err != nil {
			zap.L().Warn("feedback generation failed, using fallback",
				zap.String("request_id", st.RequestID),
				zap.Error(err))
		}
	}

	return fmt.Sprintf("Failed quality checks: %s. Revise the assessment addressing these points.",
		strings.Join(failed, ", "))
}

func failedCheckNames(checks map[string]bool) []string {
	var failed []string
	for name, passed := range checks {
		if !passed {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return failed
}

func validationNotes(checks map[string]bool) []string {
	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}

	notes := []string{fmt.Sprintf("Quality checks passed: %d/%d", passed, len(checks))}

	if !checks[model.CheckCompanyDataAvailable] {
		notes = append(notes, "Registry data unavailable; assessment quality may be reduced")
	}
	if !checks[model.CheckFinancialDataAvailable] {
		notes = append(notes, "Limited financial data; assessment relies on public information")
	}
	if checks[model.CheckRecommendationLogic] {
		notes = append(notes, "Recommendation is consistent with the computed scores")
	}
	if checks[model.CheckNarrativeQuality] {
		notes = append(notes, "Narrative text quality approved")
	}
	return notes
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
