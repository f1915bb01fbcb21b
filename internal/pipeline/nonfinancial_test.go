package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/credit-cli/internal/model"
)

var testNow = func() time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
}

func activeCompany(registered time.Time) *model.CompanyRecord {
	return &model.CompanyRecord{
		TaxID:            "11222333000181",
		CorporateName:    "Padaria Estrela LTDA",
		LegalStatus:      "ATIVA",
		RegistrationDate: &registered,
	}
}

func TestScoreNonFinancial_EstablishedActiveCompany(t *testing.T) {
	company := activeCompany(testNow().AddDate(-6, 0, 0))

	score, positive, negative := scoreNonFinancial(company, nil, DefaultLexicon(), testNow)

	// 7.0 baseline + 1.0 longevity; active status is a note with no delta.
	assert.Equal(t, 8.0, score)
	require.Len(t, positive, 2)
	assert.Contains(t, positive[0], "active")
	assert.Contains(t, positive[1], "Established business")
	assert.Empty(t, negative)
}

func TestScoreNonFinancial_NoCompanyData(t *testing.T) {
	score, positive, negative := scoreNonFinancial(nil, nil, DefaultLexicon(), testNow)

	// Absence of registry data is not itself a risk signal; the score stays
	// at the low-risk baseline.
	assert.Equal(t, 7.0, score)
	assert.Empty(t, positive)
	assert.Empty(t, negative)
}

func TestScoreNonFinancial_EmptyStatusPenalized(t *testing.T) {
	company := activeCompany(testNow().AddDate(-6, 0, 0))
	company.LegalStatus = ""

	score, positive, negative := scoreNonFinancial(company, nil, DefaultLexicon(), testNow)

	// Only a status carrying the active marker escapes the penalty.
	// 7.0 - 2.0 status + 1.0 longevity.
	assert.Equal(t, 6.0, score)
	assert.NotContains(t, positive, "Company is active in the national registry")
	require.NotEmpty(t, negative)
	assert.Contains(t, negative[0], "not active")
}

func TestScoreNonFinancial_InactiveStatus(t *testing.T) {
	company := activeCompany(testNow().AddDate(-6, 0, 0))
	company.LegalStatus = "BAIXADA"

	score, _, negative := scoreNonFinancial(company, nil, DefaultLexicon(), testNow)

	// 7.0 - 2.0 status + 1.0 longevity.
	assert.Equal(t, 6.0, score)
	require.NotEmpty(t, negative)
	assert.Contains(t, negative[0], "BAIXADA")
}

func TestScoreNonFinancial_YoungCompany(t *testing.T) {
	company := activeCompany(testNow().AddDate(-1, 0, 0))

	score, _, negative := scoreNonFinancial(company, nil, DefaultLexicon(), testNow)

	assert.Equal(t, 6.5, score)
	require.Len(t, negative, 1)
	assert.Contains(t, negative[0], "Young business")
}

func TestScoreNonFinancial_MidAgeCompanyNeutral(t *testing.T) {
	company := activeCompany(testNow().AddDate(-3, 0, 0))

	score, positive, negative := scoreNonFinancial(company, nil, DefaultLexicon(), testNow)

	assert.Equal(t, 7.0, score)
	assert.Contains(t, positive, "Operating for 3 years")
	assert.Empty(t, negative)
}

func TestScoreNonFinancial_LegalMentionsPenaltyCapped(t *testing.T) {
	company := activeCompany(testNow().AddDate(-6, 0, 0))
	results := []model.SearchResult{
		{Title: "Processo contra a empresa", Content: "execução fiscal em andamento", Intent: model.IntentLegal},
		{Title: "Nova ação", Content: "recuperação judicial decretada", Intent: model.IntentLegal},
		{Title: "Mais um processo", Content: "dívida ativa registrada", Intent: model.IntentLegal},
	}

	score, _, negative := scoreNonFinancial(company, results, DefaultLexicon(), testNow)

	// 8.0 minus the legal penalty, capped at 3.0 despite 3 hits x 1.5.
	assert.Equal(t, 5.0, score)

	assert.Contains(t, negative, "Legal proceedings mentioned in 3 search result(s)")
}

func TestScoreNonFinancial_PositiveMentionsBonusCapped(t *testing.T) {
	company := activeCompany(testNow().AddDate(-6, 0, 0))
	results := []model.SearchResult{
		{Title: "Empresa recebe prêmio", Content: "reconhecimento pelo crescimento", Intent: model.IntentNews},
		{Title: "Expansão anunciada", Content: "inovação no setor", Intent: model.IntentNews},
		{Title: "Sucesso regional", Content: "crescimento acelerado", Intent: model.IntentPresence},
	}

	score, positive, _ := scoreNonFinancial(company, results, DefaultLexicon(), testNow)

	// 8.0 plus the positive bonus, capped at 1.0 despite 3 hits x 0.5.
	assert.Equal(t, 9.0, score)
	assert.Contains(t, positive, "Positive media coverage in 3 search result(s)")
}

func TestScoreNonFinancial_ResultCountsOncePerBucket(t *testing.T) {
	// One result matching several keywords of the same bucket counts once.
	results := []model.SearchResult{
		{Title: "Processo e execução", Content: "falência, dívida e recuperação judicial"},
	}

	legal, adverse, positive := countMentions(results, DefaultLexicon())

	assert.Equal(t, 1, legal)
	assert.Equal(t, 0, adverse)
	assert.Equal(t, 0, positive)
}

func TestScoreNonFinancial_Pure(t *testing.T) {
	company := activeCompany(testNow().AddDate(-6, 0, 0))
	results := []model.SearchResult{
		{Title: "Multa aplicada", Content: "irregularidade apontada"},
	}

	s1, p1, n1 := scoreNonFinancial(company, results, DefaultLexicon(), testNow)
	s2, p2, n2 := scoreNonFinancial(company, results, DefaultLexicon(), testNow)

	assert.Equal(t, s1, s2)
	assert.Equal(t, p1, p2)
	assert.Equal(t, n1, n2)
}
