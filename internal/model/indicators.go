package model

// FinancialIndicators is one snapshot of extracted financial figures.
// Nil means the figure was not observed, never zero.
type FinancialIndicators struct {
	Revenue            *float64 `json:"revenue,omitempty"`
	GrossProfit        *float64 `json:"gross_profit,omitempty"`
	OperatingProfit    *float64 `json:"operating_profit,omitempty"`
	NetProfit          *float64 `json:"net_profit,omitempty"`
	TotalAssets        *float64 `json:"total_assets,omitempty"`
	CurrentAssets      *float64 `json:"current_assets,omitempty"`
	TotalLiabilities   *float64 `json:"total_liabilities,omitempty"`
	CurrentLiabilities *float64 `json:"current_liabilities,omitempty"`
	Equity             *float64 `json:"equity,omitempty"`
	DebtToEquity       *float64 `json:"debt_to_equity,omitempty"`
	ROA                *float64 `json:"roa,omitempty"`
	ROE                *float64 `json:"roe,omitempty"`
	Period             string   `json:"period"`
}

// IsEmpty reports whether no figure was observed at all.
func (f FinancialIndicators) IsEmpty() bool {
	return f.Revenue == nil && f.GrossProfit == nil && f.OperatingProfit == nil &&
		f.NetProfit == nil && f.TotalAssets == nil && f.CurrentAssets == nil &&
		f.TotalLiabilities == nil && f.CurrentLiabilities == nil && f.Equity == nil &&
		f.DebtToEquity == nil && f.ROA == nil && f.ROE == nil
}

// CurrentRatio returns current assets over current liabilities, computed
// only when both are observed and liabilities are nonzero.
func (f FinancialIndicators) CurrentRatio() *float64 {
	if f.CurrentAssets == nil || f.CurrentLiabilities == nil || *f.CurrentLiabilities == 0 {
		return nil
	}
	r := *f.CurrentAssets / *f.CurrentLiabilities
	return &r
}

// NetMargin returns net profit over revenue as a percentage, computed only
// when both are observed and revenue is nonzero.
func (f FinancialIndicators) NetMargin() *float64 {
	if f.NetProfit == nil || f.Revenue == nil || *f.Revenue == 0 {
		return nil
	}
	m := *f.NetProfit / *f.Revenue * 100
	return &m
}
