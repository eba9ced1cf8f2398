package types

// FeatureRecord is the flat feature set extracted for one stock. A nil field could not be computed.
type FeatureRecord struct {
	Ticker string `json:"ticker"`

	CurrentPrice  *float64 `json:"current_price,omitempty"`
	SMA20         *float64 `json:"sma_20_day,omitempty"`
	SMA50         *float64 `json:"sma_50_day,omitempty"`
	SMA200        *float64 `json:"sma_200_day,omitempty"`
	RSI14         *float64 `json:"rsi_14_day,omitempty"`
	MACDLine      *float64 `json:"macd_line,omitempty"`
	MACDSignal    *float64 `json:"macd_signal,omitempty"`
	MACDHistogram *float64 `json:"macd_histogram,omitempty"`

	TrailingPE      *float64 `json:"pe_ratio_trailing,omitempty"`
	ForwardPE       *float64 `json:"forward_pe_ratio,omitempty"`
	DividendYield   *float64 `json:"dividend_yield,omitempty"`
	MarketCap       *float64 `json:"market_cap,omitempty"`
	PriceToBook     *float64 `json:"price_to_book,omitempty"`
	EnterpriseValue *float64 `json:"enterprise_value,omitempty"`

	AnalystStrongBuy  *int `json:"analyst_strong_buy,omitempty"`
	AnalystBuy        *int `json:"analyst_buy,omitempty"`
	AnalystHold       *int `json:"analyst_hold,omitempty"`
	AnalystSell       *int `json:"analyst_sell,omitempty"`
	AnalystStrongSell *int `json:"analyst_strong_sell,omitempty"`

	ValuationDescription *string `json:"valuation_description,omitempty"`
	ValuationDiscount    *string `json:"valuation_discount,omitempty"`

	SignificantDevelopmentsCount int `json:"significant_developments_count"`
	AnalystReportsCount          int `json:"analyst_reports_count"`

	// Macro holds the latest reported value per macro series, keyed by series name.
	Macro map[string]MacroPoint `json:"macro,omitempty"`

	Errors []string `json:"errors"`
}

// MacroPoint is the most recent usable observation of a macro series.
type MacroPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// AddError appends a non-fatal diagnostic.
func (f *FeatureRecord) AddError(msg string) {
	f.Errors = append(f.Errors, msg)
}

// Valuation returns the valuation description or "" when absent.
func (f *FeatureRecord) Valuation() string {
	if f == nil || f.ValuationDescription == nil {
		return ""
	}
	return *f.ValuationDescription
}
