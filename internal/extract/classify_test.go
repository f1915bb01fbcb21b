package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/credit-cli/internal/model"
)

func TestClassifyType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.DocumentType
	}{
		{
			"balance sheet by header",
			"BALANÇO PATRIMONIAL\nAtivo Circulante\nPassivo Circulante\nPatrimônio Líquido",
			model.DocTypeBalanceSheet,
		},
		{
			"income statement by header",
			"Demonstração do Resultado do Exercício\nReceita Líquida\nLucro Líquido\nEBITDA",
			model.DocTypeIncomeStatement,
		},
		{
			"cash flow statement",
			"Demonstração dos Fluxos de Caixa\natividades operacionais\natividades de investimento",
			model.DocTypeCashFlow,
		},
		{
			"zero keyword hits resolve to other",
			"Contrato de prestação de serviços entre as partes.",
			model.DocTypeOther,
		},
		{
			"empty text",
			"",
			model.DocTypeOther,
		},
		{
			"accented and unaccented text classify alike",
			"balanco patrimonial ativo passivo",
			model.DocTypeBalanceSheet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyType(tt.text))
		})
	}
}

func TestClassifyType_TieBreaksByPriorityOrder(t *testing.T) {
	// One keyword hit for each of balance sheet and income statement; the
	// earlier declared type must win.
	text := "ativo, receita bruta"
	assert.Equal(t, model.DocTypeBalanceSheet, ClassifyType(text))
}
