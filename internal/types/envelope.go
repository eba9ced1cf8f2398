package types

import "math"

// StockDataEnvelope carries everything fetched for one holding. Every section is optional:
// a nil pointer, nil slice or nil map means the provider returned nothing for it.
//
// All sections are read through the nil-safe Get* accessors, so a lookup such as
// env.GetFundamentals().GetSummary().GetTrailingPE() yields nil instead of panicking
// whenever a link in the chain is missing.
type StockDataEnvelope struct {
	Ticker         string                 `json:"ticker"`
	Holding        *Holding               `json:"holding,omitempty"`
	Chart          *Chart                 `json:"chart,omitempty"`
	Fundamentals   *Fundamentals          `json:"fundamentals,omitempty"`
	AnalystReports []AnalystReport        `json:"analyst_reports,omitempty"`
	Macro          map[string]MacroSeries `json:"macro,omitempty"`
	News           []string               `json:"news,omitempty"`
	Errors         []string               `json:"errors,omitempty"`
}

// Chart is a daily close series, ascending by time. A nil close is a gap in the feed.
type Chart struct {
	Timestamps  []int64    `json:"timestamps"`
	ClosePrices []*float64 `json:"close_prices"`
}

type Fundamentals struct {
	Summary                 *Summary              `json:"summary,omitempty"`
	KeyStats                *KeyStats             `json:"key_stats,omitempty"`
	RecommendationTrend     []RecommendationTrend `json:"recommendation_trend,omitempty"`
	Valuation               *Valuation            `json:"valuation,omitempty"`
	SignificantDevelopments []Development         `json:"significant_developments,omitempty"`
}

type Summary struct {
	TrailingPE    *float64 `json:"trailing_pe,omitempty"`
	ForwardPE     *float64 `json:"forward_pe,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
}

type KeyStats struct {
	PriceToBook     *float64 `json:"price_to_book,omitempty"`
	EnterpriseValue *float64 `json:"enterprise_value,omitempty"`
}

// RecommendationTrend is one period of analyst rating counts.
type RecommendationTrend struct {
	Period     string `json:"period,omitempty"`
	StrongBuy  *int   `json:"strong_buy,omitempty"`
	Buy        *int   `json:"buy,omitempty"`
	Hold       *int   `json:"hold,omitempty"`
	Sell       *int   `json:"sell,omitempty"`
	StrongSell *int   `json:"strong_sell,omitempty"`
}

type Valuation struct {
	Description *string `json:"description,omitempty"`
	Discount    *string `json:"discount,omitempty"`
}

type Development struct {
	Headline string `json:"headline"`
	Date     string `json:"date,omitempty"`
}

type AnalystReport struct {
	Hits []ReportHit `json:"hits"`
}

type ReportHit struct {
	Title    string `json:"title,omitempty"`
	Abstract string `json:"abstract"`
}

// MacroSeries maps a year ("2023") to the indicator value for that year.
type MacroSeries struct {
	Indicator string              `json:"indicator,omitempty"`
	Data      map[string]*float64 `json:"data"`
}

func (e *StockDataEnvelope) GetChart() *Chart {
	if e == nil {
		return nil
	}
	return e.Chart
}

func (e *StockDataEnvelope) GetFundamentals() *Fundamentals {
	if e == nil {
		return nil
	}
	return e.Fundamentals
}

func (e *StockDataEnvelope) GetAnalystReports() []AnalystReport {
	if e == nil {
		return nil
	}
	return e.AnalystReports
}

// GetMacro returns the named macro series, or nil when absent.
func (e *StockDataEnvelope) GetMacro(name string) *MacroSeries {
	if e == nil || e.Macro == nil {
		return nil
	}
	s, ok := e.Macro[name]
	if !ok {
		return nil
	}
	return &s
}

func (e *StockDataEnvelope) GetNews() []string {
	if e == nil {
		return nil
	}
	return e.News
}

// Closes returns the close prices with gaps and non-finite values removed.
func (c *Chart) Closes() []float64 {
	if c == nil {
		return nil
	}
	out := make([]float64, 0, len(c.ClosePrices))
	for _, p := range c.ClosePrices {
		if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// Complete reports whether the chart carries both timestamps and close prices.
func (c *Chart) Complete() bool {
	return c != nil && len(c.Timestamps) > 0 && c.ClosePrices != nil
}

func (f *Fundamentals) GetSummary() *Summary {
	if f == nil {
		return nil
	}
	return f.Summary
}

func (f *Fundamentals) GetKeyStats() *KeyStats {
	if f == nil {
		return nil
	}
	return f.KeyStats
}

// GetLatestTrend returns the first recommendation trend entry, which the provider orders newest first.
func (f *Fundamentals) GetLatestTrend() *RecommendationTrend {
	if f == nil || len(f.RecommendationTrend) == 0 {
		return nil
	}
	return &f.RecommendationTrend[0]
}

func (f *Fundamentals) GetValuation() *Valuation {
	if f == nil {
		return nil
	}
	return f.Valuation
}

func (f *Fundamentals) GetSignificantDevelopments() []Development {
	if f == nil {
		return nil
	}
	return f.SignificantDevelopments
}

func (s *Summary) GetTrailingPE() *float64 {
	if s == nil {
		return nil
	}
	return s.TrailingPE
}

func (s *Summary) GetForwardPE() *float64 {
	if s == nil {
		return nil
	}
	return s.ForwardPE
}

func (s *Summary) GetDividendYield() *float64 {
	if s == nil {
		return nil
	}
	return s.DividendYield
}

func (s *Summary) GetMarketCap() *float64 {
	if s == nil {
		return nil
	}
	return s.MarketCap
}

func (k *KeyStats) GetPriceToBook() *float64 {
	if k == nil {
		return nil
	}
	return k.PriceToBook
}

func (k *KeyStats) GetEnterpriseValue() *float64 {
	if k == nil {
		return nil
	}
	return k.EnterpriseValue
}

func (v *Valuation) GetDescription() *string {
	if v == nil {
		return nil
	}
	return v.Description
}

func (v *Valuation) GetDiscount() *string {
	if v == nil {
		return nil
	}
	return v.Discount
}

func (m *MacroSeries) GetData() map[string]*float64 {
	if m == nil {
		return nil
	}
	return m.Data
}
