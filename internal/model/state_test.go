package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisState_Lifecycle(t *testing.T) {
	st := NewAnalysisState("req-1", "11222333000181", nil, 3)

	assert.Equal(t, StageGathering, st.Stage)
	assert.Equal(t, 0, st.RetryCount)
	assert.Equal(t, 3, st.MaxRetries)
	assert.True(t, st.CanRetry())

	st.RetryCount = 3
	assert.False(t, st.CanRetry())
}

func TestAnalysisState_AddNote(t *testing.T) {
	st := NewAnalysisState("req-1", "11222333000181", nil, 3)

	st.AddNote(StageScoring, "assessment computed: %.1f", 6.5)

	assert.Equal(t, []string{"[scoring] assessment computed: 6.5"}, st.Log)
}

func TestAnalysisState_IndicatorCount(t *testing.T) {
	st := NewAnalysisState("req-1", "11222333000181", nil, 3)
	assert.Equal(t, 0, st.IndicatorCount())

	st.DocumentAnalyses = []DocumentAnalysis{
		{Indicators: []FinancialIndicators{{}, {}}},
		{},
		{Indicators: []FinancialIndicators{{}}},
	}
	assert.Equal(t, 3, st.IndicatorCount())
}

func TestYearsOperating(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	c := &CompanyRecord{}
	assert.Equal(t, -1.0, c.YearsOperating(now))

	registered := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	c.RegistrationDate = &registered
	assert.InDelta(t, 6.0, c.YearsOperating(now), 0.02)
}

func TestFinancialIndicators_Ratios(t *testing.T) {
	v := func(f float64) *float64 { return &f }

	ind := FinancialIndicators{CurrentAssets: v(300), CurrentLiabilities: v(200)}
	assert.Equal(t, 1.5, *ind.CurrentRatio())

	ind = FinancialIndicators{CurrentAssets: v(300), CurrentLiabilities: v(0)}
	assert.Nil(t, ind.CurrentRatio())

	ind = FinancialIndicators{CurrentAssets: v(300)}
	assert.Nil(t, ind.CurrentRatio())

	ind = FinancialIndicators{NetProfit: v(50), Revenue: v(1000)}
	assert.Equal(t, 5.0, *ind.NetMargin())

	ind = FinancialIndicators{NetProfit: v(50)}
	assert.Nil(t, ind.NetMargin())

	assert.True(t, FinancialIndicators{}.IsEmpty())
	assert.False(t, FinancialIndicators{Revenue: v(1)}.IsEmpty())
}
