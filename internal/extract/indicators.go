package extract

import (
	"math"
	"regexp"

	"github.com/sells-group/credit-cli/internal/model"
)

// Field patterns keyed by indicator field, grouped by the statement type
// where each figure is reported.
var balanceSheetPatterns = map[string]*regexp.Regexp{
	"total_assets":        regexp.MustCompile(`ativo\s+total\s*[:\-]?\s*(?:r\$\s*)?([\d\.,]+)`),
	"current_assets":      regexp.MustCompile(`ativo\s+circulante\s*[:\-]?\s*(?:r\$\s*)?([\d\.,]+)`),
	"total_liabilities":   regexp.MustCompile(`passivo\s+total\s*[:\-]?\s*(?:r\$\s*)?([\d\.,]+)`),
	"current_liabilities": regexp.MustCompile(`passivo\s+circulante\s*[:\-]?\s*(?:r\$\s*)?([\d\.,]+)`),
	"equity":              regexp.MustCompile(`patrimonio\s+liquido\s*[:\-]?\s*(?:r\$\s*)?([\d\.,]+)`),
}

var incomeStatementPatterns = map[string]*regexp.Regexp{
	"revenue":          regexp.MustCompile(`receita\s+(?:liquida|total)\s*[:\-]?\s*(?:r\$\s*)?([\d\.,]+)`),
	"gross_profit":     regexp.MustCompile(`lucro\s+bruto\s*[:\-]?\s*(?:r\$\s*)?([\d\.,]+)`),
	"operating_profit": regexp.MustCompile(`lucro\s+operacional\s*[:\-]?\s*(?:r\$\s*)?([\d\.,]+)`),
	"net_profit":       regexp.MustCompile(`lucro\s+liquido\s*[:\-]?\s*(?:r\$\s*)?([\d\.,]+)`),
}

// Indicators extracts a financial-indicator snapshot from document text.
// Returns nil when no figure at all could be read.
func Indicators(text string, docType model.DocumentType) *model.FinancialIndicators {
	folded := Fold(text)

	values := make(map[string]float64)
	scan := func(patterns map[string]*regexp.Regexp) {
		for field, p := range patterns {
			m := p.FindStringSubmatch(folded)
			if m == nil {
				continue
			}
			if v, ok := ParseBRNumber(m[1]); ok {
				values[field] = v
			}
		}
	}

	switch docType {
	case model.DocTypeBalanceSheet:
		scan(balanceSheetPatterns)
	case model.DocTypeIncomeStatement:
		scan(incomeStatementPatterns)
	default:
		// Unlabeled documents get both scans; cash-flow figures do not feed
		// the scorer and are not extracted.
		scan(balanceSheetPatterns)
		scan(incomeStatementPatterns)
	}

	if len(values) == 0 {
		return nil
	}

	ind := &model.FinancialIndicators{
		Revenue:            fieldPtr(values, "revenue"),
		GrossProfit:        fieldPtr(values, "gross_profit"),
		OperatingProfit:    fieldPtr(values, "operating_profit"),
		NetProfit:          fieldPtr(values, "net_profit"),
		TotalAssets:        fieldPtr(values, "total_assets"),
		CurrentAssets:      fieldPtr(values, "current_assets"),
		TotalLiabilities:   fieldPtr(values, "total_liabilities"),
		CurrentLiabilities: fieldPtr(values, "current_liabilities"),
		Equity:             fieldPtr(values, "equity"),
		Period:             ExtractPeriod(text),
	}
	DeriveRatios(ind)
	return ind
}

// DeriveRatios fills debt-to-equity, ROA and ROE when both operands are
// present and the denominator is nonzero. Ratios are rounded to two decimals;
// ROA and ROE are percentages.
func DeriveRatios(ind *model.FinancialIndicators) {
	if ind.TotalLiabilities != nil && ind.Equity != nil && *ind.Equity != 0 {
		ind.DebtToEquity = round2(*ind.TotalLiabilities / *ind.Equity)
	}
	if ind.NetProfit != nil && ind.TotalAssets != nil && *ind.TotalAssets != 0 {
		ind.ROA = round2(*ind.NetProfit / *ind.TotalAssets * 100)
	}
	if ind.NetProfit != nil && ind.Equity != nil && *ind.Equity != 0 {
		ind.ROE = round2(*ind.NetProfit / *ind.Equity * 100)
	}
}

func fieldPtr(values map[string]float64, key string) *float64 {
	if v, ok := values[key]; ok {
		return &v
	}
	return nil
}

func round2(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}
