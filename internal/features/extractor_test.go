package features

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/types"
)

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }
func s(v string) *string     { return &v }

func chartOf(prices ...*float64) *types.Chart {
	ts := make([]int64, len(prices))
	for n := range ts {
		ts[n] = int64(1700000000 + n*86400)
	}
	return &types.Chart{Timestamps: ts, ClosePrices: prices}
}

func rising(n int) []*float64 {
	out := make([]*float64, n)
	for k := range out {
		out[k] = f64(100 + float64(k))
	}
	return out
}

func newExtractor() *Extractor {
	return NewExtractor(store.Default().Indicators)
}

func TestExtractFullEnvelope(t *testing.T) {
	env := &types.StockDataEnvelope{
		Ticker: "AAPL",
		Chart:  chartOf(rising(220)...),
		Fundamentals: &types.Fundamentals{
			Summary:  &types.Summary{TrailingPE: f64(28.5), ForwardPE: f64(25), DividendYield: f64(0.005), MarketCap: f64(3e12)},
			KeyStats: &types.KeyStats{PriceToBook: f64(45), EnterpriseValue: f64(3.1e12)},
			RecommendationTrend: []types.RecommendationTrend{
				{Period: "0m", StrongBuy: i(10), Buy: i(20), Hold: i(5), Sell: i(1), StrongSell: i(0)},
				{Period: "-1m", StrongBuy: i(1)},
			},
			Valuation:               &types.Valuation{Description: s("Undervalued"), Discount: s("-12%")},
			SignificantDevelopments: []types.Development{{Headline: "a"}, {Headline: "b"}},
		},
		AnalystReports: []types.AnalystReport{{Hits: []types.ReportHit{{Abstract: "x"}, {Abstract: "y"}, {Abstract: "z"}}}},
		Macro: map[string]types.MacroSeries{
			"gdp_us": {Data: map[string]*float64{"2021": f64(23.3), "2022": f64(25.4), "2023": nil}},
		},
	}

	f := newExtractor().Extract(context.Background(), env)

	assert.Equal(t, "AAPL", f.Ticker)
	assert.Empty(t, f.Errors)
	require.NotNil(t, f.CurrentPrice)
	assert.Equal(t, 319.0, *f.CurrentPrice)
	require.NotNil(t, f.SMA20)
	assert.InDelta(t, 309.5, *f.SMA20, 1e-9)
	require.NotNil(t, f.SMA200)
	require.NotNil(t, f.RSI14)
	assert.Equal(t, 100.0, *f.RSI14)
	require.NotNil(t, f.MACDLine)
	require.NotNil(t, f.MACDSignal)
	require.NotNil(t, f.MACDHistogram)

	assert.Equal(t, 28.5, *f.TrailingPE)
	assert.Equal(t, 45.0, *f.PriceToBook)
	assert.Equal(t, 10, *f.AnalystStrongBuy)
	assert.Equal(t, 0, *f.AnalystStrongSell)
	assert.Equal(t, "Undervalued", f.Valuation())
	assert.Equal(t, "-12%", *f.ValuationDiscount)
	assert.Equal(t, 2, f.SignificantDevelopmentsCount)
	assert.Equal(t, 3, f.AnalystReportsCount)

	require.Contains(t, f.Macro, "gdp_us")
	assert.Equal(t, types.MacroPoint{Year: 2022, Value: 25.4}, f.Macro["gdp_us"])
}

func TestExtractShortSeriesLeavesIndicatorsAbsent(t *testing.T) {
	env := &types.StockDataEnvelope{Ticker: "X", Chart: chartOf(rising(30)...)}
	f := newExtractor().Extract(context.Background(), env)

	require.NotNil(t, f.CurrentPrice)
	assert.NotNil(t, f.SMA20)
	assert.Nil(t, f.SMA50)
	assert.Nil(t, f.SMA200)
	assert.NotNil(t, f.RSI14)
	assert.NotNil(t, f.MACDLine)

	f = newExtractor().Extract(context.Background(), &types.StockDataEnvelope{Chart: chartOf(rising(10)...)})
	assert.Nil(t, f.SMA20)
	assert.Nil(t, f.RSI14)
	assert.Nil(t, f.MACDLine)
	assert.Nil(t, f.MACDSignal)
	assert.Nil(t, f.MACDHistogram)
}

func TestExtractFiltersGaps(t *testing.T) {
	prices := append([]*float64{nil}, rising(20)...)
	prices = append(prices, nil)
	f := newExtractor().Extract(context.Background(), &types.StockDataEnvelope{Chart: chartOf(prices...)})
	require.NotNil(t, f.CurrentPrice)
	assert.Equal(t, 119.0, *f.CurrentPrice)
	require.NotNil(t, f.SMA20)
	assert.InDelta(t, 109.5, *f.SMA20, 1e-9)
}

func TestExtractMissingSections(t *testing.T) {
	f := newExtractor().Extract(context.Background(), &types.StockDataEnvelope{Ticker: "NONE"})

	assert.Equal(t, []string{
		"Chart data missing or incomplete for technical indicators.",
		"YahooFinance insights data missing for fundamentals.",
		"DataBank macroeconomic data missing.",
	}, f.Errors)
	assert.Nil(t, f.CurrentPrice)
	assert.Nil(t, f.TrailingPE)
	assert.Zero(t, f.SignificantDevelopmentsCount)
	assert.Zero(t, f.AnalystReportsCount)
}

func TestExtractNilEnvelope(t *testing.T) {
	f := newExtractor().Extract(context.Background(), nil)
	assert.Len(t, f.Errors, 3)
}

func TestExtractEmptyCloses(t *testing.T) {
	env := &types.StockDataEnvelope{Chart: chartOf(nil, nil)}
	f := newExtractor().Extract(context.Background(), env)
	assert.Contains(t, f.Errors, "No close prices available for technical indicators.")
	assert.Nil(t, f.CurrentPrice)
}

func TestExtractPartialFundamentals(t *testing.T) {
	env := &types.StockDataEnvelope{
		Fundamentals: &types.Fundamentals{Summary: &types.Summary{ForwardPE: f64(12)}},
	}
	f := newExtractor().Extract(context.Background(), env)
	assert.Nil(t, f.TrailingPE)
	require.NotNil(t, f.ForwardPE)
	assert.Equal(t, 12.0, *f.ForwardPE)
	assert.Nil(t, f.PriceToBook)
	assert.Nil(t, f.AnalystBuy)
	assert.Nil(t, f.ValuationDescription)
	assert.NotContains(t, f.Errors, "YahooFinance insights data missing for fundamentals.")
}

func TestLatest(t *testing.T) {
	tests := []struct {
		name string
		data map[string]*float64
		want types.MacroPoint
		ok   bool
	}{
		{"empty", nil, types.MacroPoint{}, false},
		{"all nil", map[string]*float64{"2020": nil}, types.MacroPoint{}, false},
		{"skips non year keys", map[string]*float64{"2019": f64(1), "latest": f64(9), "20a0": f64(8)}, types.MacroPoint{Year: 2019, Value: 1}, true},
		{"max year with value", map[string]*float64{"2019": f64(1), "2022": f64(3), "2024": nil}, types.MacroPoint{Year: 2022, Value: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Latest(tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSectionRecoversPanic(t *testing.T) {
	f := types.FeatureRecord{}
	section(&f, "technical indicators", func() error { panic("boom") })
	section(&f, "fundamental/valuation", func() error { return errors.New("bad field") })

	assert.Equal(t, []string{
		"Error in technical indicators: boom",
		"Error in fundamental/valuation: bad field",
	}, f.Errors)
}
