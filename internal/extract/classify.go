package extract

import (
	"strings"

	"github.com/sells-group/credit-cli/internal/model"
)

// docTypePriority fixes the tie-break order for classification: the
// first-declared type wins when keyword counts are equal.
var docTypePriority = []model.DocumentType{
	model.DocTypeBalanceSheet,
	model.DocTypeIncomeStatement,
	model.DocTypeCashFlow,
}

var docTypeKeywords = map[model.DocumentType][]string{
	model.DocTypeBalanceSheet: {
		"balanco patrimonial", "ativo", "passivo", "patrimonio liquido",
		"ativo circulante", "passivo circulante", "imobilizado",
	},
	model.DocTypeIncomeStatement: {
		"demonstracao do resultado", "dre", "receita liquida", "lucro liquido",
		"receita bruta", "custos", "despesas operacionais", "ebitda",
	},
	model.DocTypeCashFlow: {
		"fluxo de caixa", "demonstracao dos fluxos de caixa",
		"atividades operacionais", "atividades de investimento", "atividades de financiamento",
	},
}

// ClassifyType labels a document by keyword density over its text. Ties go
// to the earliest type in the priority order; zero hits always resolve to
// DocTypeOther.
func ClassifyType(text string) model.DocumentType {
	folded := Fold(text)

	best := model.DocTypeOther
	bestScore := 0
	for _, dt := range docTypePriority {
		score := 0
		for _, kw := range docTypeKeywords[dt] {
			if strings.Contains(folded, kw) {
				score++
			}
		}
		if score > bestScore {
			best = dt
			bestScore = score
		}
	}
	return best
}
