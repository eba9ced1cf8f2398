package features

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/ta"
	"portfolio-advisor/internal/types"
)

// Extractor turns a StockDataEnvelope into a FeatureRecord. Each section (technicals,
// fundamentals, macro) is extracted independently; a failure in one is recorded in
// the record's Errors and never stops the others.
type Extractor struct {
	cfg store.IndicatorsConfig
}

func NewExtractor(cfg store.IndicatorsConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

func (e *Extractor) Extract(_ context.Context, env *types.StockDataEnvelope) types.FeatureRecord {
	f := types.FeatureRecord{Errors: []string{}}
	if env != nil {
		f.Ticker = env.Ticker
	}

	if chart := env.GetChart(); chart.Complete() {
		section(&f, "technical indicators", func() error { return e.technicals(&f, chart) })
	} else {
		f.AddError("Chart data missing or incomplete for technical indicators.")
	}

	if fund := env.GetFundamentals(); fund != nil {
		section(&f, "fundamental/valuation", func() error { return fundamentals(&f, fund) })
	} else {
		f.AddError("YahooFinance insights data missing for fundamentals.")
	}

	f.SignificantDevelopmentsCount = len(env.GetFundamentals().GetSignificantDevelopments())
	if reports := env.GetAnalystReports(); len(reports) > 0 {
		f.AnalystReportsCount = len(reports[0].Hits)
	}

	if env != nil && len(env.Macro) > 0 {
		section(&f, "macroeconomic data", func() error { return macro(&f, env.Macro) })
	} else {
		f.AddError("DataBank macroeconomic data missing.")
	}
	return f
}

// section runs fn and converts an error or a panic into an "Error in <label>" diagnostic.
func section(f *types.FeatureRecord, label string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			f.AddError(fmt.Sprintf("Error in %s: %v", label, r))
		}
	}()
	if err := fn(); err != nil {
		f.AddError(fmt.Sprintf("Error in %s: %v", label, err))
	}
}

func (e *Extractor) technicals(f *types.FeatureRecord, chart *types.Chart) error {
	closes := chart.Closes()
	if len(closes) == 0 {
		f.AddError("No close prices available for technical indicators.")
		return nil
	}
	// computed before assignment so a failure leaves every indicator absent
	price := ptr(closes[len(closes)-1])
	sma20 := ptr(ta.SMA(closes, e.cfg.SMAShort))
	sma50 := ptr(ta.SMA(closes, e.cfg.SMAMedium))
	sma200 := ptr(ta.SMA(closes, e.cfg.SMALong))
	rsi := ptr(ta.RSI(closes, e.cfg.RSIPeriod))
	line, sig, hist := ta.MACD(closes, e.cfg.MACDShort, e.cfg.MACDLong, e.cfg.MACDSignal)

	f.CurrentPrice, f.SMA20, f.SMA50, f.SMA200, f.RSI14 = price, sma20, sma50, sma200, rsi
	if finite(line) && finite(sig) && finite(hist) {
		f.MACDLine, f.MACDSignal, f.MACDHistogram = &line, &sig, &hist
	}
	return nil
}

func fundamentals(f *types.FeatureRecord, fund *types.Fundamentals) error {
	summary := fund.GetSummary()
	f.TrailingPE = finitePtr(summary.GetTrailingPE())
	f.ForwardPE = finitePtr(summary.GetForwardPE())
	f.DividendYield = finitePtr(summary.GetDividendYield())
	f.MarketCap = finitePtr(summary.GetMarketCap())

	stats := fund.GetKeyStats()
	f.PriceToBook = finitePtr(stats.GetPriceToBook())
	f.EnterpriseValue = finitePtr(stats.GetEnterpriseValue())

	if trend := fund.GetLatestTrend(); trend != nil {
		f.AnalystStrongBuy = trend.StrongBuy
		f.AnalystBuy = trend.Buy
		f.AnalystHold = trend.Hold
		f.AnalystSell = trend.Sell
		f.AnalystStrongSell = trend.StrongSell
	}

	val := fund.GetValuation()
	f.ValuationDescription = val.GetDescription()
	f.ValuationDiscount = val.GetDiscount()
	return nil
}

func macro(f *types.FeatureRecord, series map[string]types.MacroSeries) error {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := series[name]
		if p, ok := Latest(s.GetData()); ok {
			if f.Macro == nil {
				f.Macro = make(map[string]types.MacroPoint)
			}
			f.Macro[name] = p
		}
	}
	return nil
}

// Latest picks the observation with the greatest all-digit year key and a non-nil value.
func Latest(data map[string]*float64) (types.MacroPoint, bool) {
	best := -1
	var val float64
	for k, v := range data {
		if v == nil || !isDigits(k) {
			continue
		}
		year, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		if year > best {
			best, val = year, *v
		}
	}
	if best < 0 {
		return types.MacroPoint{}, false
	}
	return types.MacroPoint{Year: best, Value: val}, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ptr returns nil for values that could not be computed.
func ptr(v float64) *float64 {
	if !finite(v) {
		return nil
	}
	return &v
}

func finitePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(*v)
}
