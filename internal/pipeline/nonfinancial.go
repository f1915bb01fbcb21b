package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/credit-cli/internal/extract"
	"github.com/sells-group/credit-cli/internal/model"
)

const nonFinancialBaseline = 7.0

// scoreNonFinancial rates registry standing, operating history, and web
// reputation signals on a 0-10 scale. Like the financial scorer it is pure;
// all keyword matching runs over diacritic-folded lowercase text.
func scoreNonFinancial(company *model.CompanyRecord, results []model.SearchResult, lex Lexicon, now nowFunc) (float64, []string, []string) {
	var positive, negative []string
	score := nonFinancialBaseline

	// A missing registry record leaves the baseline untouched: the quality
	// gate reports the gap, the score reflects only observed signals.
	if company != nil {
		status := extract.Fold(company.LegalStatus)
		if strings.Contains(status, "ativa") {
			positive = append(positive, "Company is active in the national registry")
		} else {
			score -= 2.0
			negative = append(negative, fmt.Sprintf("Registry status is not active: %q", company.LegalStatus))
		}

		years := company.YearsOperating(now())
		switch {
		case years >= 5:
			score += 1.0
			positive = append(positive, fmt.Sprintf("Established business: %d years of operation", int(years)))
		case years >= 2:
			positive = append(positive, fmt.Sprintf("Operating for %d years", int(years)))
		case years >= 0:
			score -= 0.5
			negative = append(negative, fmt.Sprintf("Young business: %d years of operation", int(years)))
		}
	}

	legalHits, adverseHits, positiveHits := countMentions(results, lex)

	if legalHits > 0 {
		penalty := min(float64(legalHits)*1.5, 3.0)
		score -= penalty
		negative = append(negative, fmt.Sprintf("Legal proceedings mentioned in %d search result(s)", legalHits))
	}
	if adverseHits > 0 {
		penalty := min(float64(adverseHits)*1.0, 2.0)
		score -= penalty
		negative = append(negative, fmt.Sprintf("Adverse media mentioned in %d search result(s)", adverseHits))
	}
	if positiveHits > 0 {
		bonus := min(float64(positiveHits)*0.5, 1.0)
		score += bonus
		positive = append(positive, fmt.Sprintf("Positive media coverage in %d search result(s)", positiveHits))
	}

	return clampScore(score), positive, negative
}

// countMentions classifies each search result into at most one hit per
// lexicon bucket. A single result can count toward several buckets but never
// more than once per bucket.
func countMentions(results []model.SearchResult, lex Lexicon) (legal, adverse, positive int) {
	for _, r := range results {
		text := extract.Fold(r.Title + " " + r.Content)
		if matchesAny(text, lex.Legal) {
			legal++
		}
		if matchesAny(text, lex.Adverse) {
			adverse++
		}
		if matchesAny(text, lex.Positive) {
			positive++
		}
	}
	return legal, adverse, positive
}
