package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/logger"
	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/types"
)

// Aggregator builds StockDataEnvelopes from the market, macro and news providers. A failed fetch
// leaves its section absent and adds a line to the envelope's Errors.
type Aggregator struct {
	market       interfaces.MarketData
	macro        interfaces.MacroData
	news         interfaces.HeadlineSource
	cfg          store.DataConfig
	maxHeadlines int
}

var _ interfaces.EnvelopeBuilder = (*Aggregator)(nil)

// NewAggregator wires the providers. news may be nil.
func NewAggregator(market interfaces.MarketData, macro interfaces.MacroData, news interfaces.HeadlineSource, cfg store.DataConfig, maxHeadlines int) *Aggregator {
	return &Aggregator{
		market:       market,
		macro:        macro,
		news:         news,
		cfg:          cfg,
		maxHeadlines: maxHeadlines,
	}
}

func (a *Aggregator) Macro(ctx context.Context) (map[string]types.MacroSeries, []string) {
	names := make([]string, 0, len(a.cfg.MacroIndicators))
	for name := range a.cfg.MacroIndicators {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []string
	out := make(map[string]types.MacroSeries, len(names))
	for _, name := range names {
		code := a.cfg.MacroIndicators[name]
		series, err := a.macro.Series(ctx, a.cfg.Country, code)
		if err != nil {
			msg := fmt.Sprintf("Failed to fetch %s data for %s: %v", name, a.cfg.Country, err)
			logger.Warn(ctx, msg, "indicator", code)
			errs = append(errs, msg)
			continue
		}
		out[name] = *series
	}
	if len(out) == 0 {
		return nil, errs
	}
	return out, errs
}

func (a *Aggregator) Envelope(ctx context.Context, h types.Holding, macro map[string]types.MacroSeries) types.StockDataEnvelope {
	ticker := h.Ticker
	symbol := a.Symbol(ticker)
	env := types.StockDataEnvelope{
		Ticker:  ticker,
		Holding: &h,
		Macro:   macro,
	}
	fail := func(what string, err error) {
		msg := fmt.Sprintf("Failed to fetch %s for %s: %v", what, ticker, err)
		logger.Warn(ctx, msg, "symbol", symbol)
		env.Errors = append(env.Errors, msg)
	}

	if chart, err := a.market.Chart(ctx, symbol); err != nil {
		fail("chart data", err)
	} else {
		env.Chart = chart
	}

	if fund, err := a.market.Fundamentals(ctx, symbol); err != nil {
		fail("insights data", err)
	} else {
		env.Fundamentals = fund
	}

	if reports, err := a.market.AnalystReports(ctx, symbol); err != nil {
		fail("analyst opinions", err)
	} else {
		env.AnalystReports = reports
	}

	if a.news != nil {
		if headlines, err := a.news.Headlines(ctx, ticker, a.maxHeadlines); err != nil {
			fail("news headlines", err)
		} else {
			env.News = headlines
		}
	}
	return env
}

// Symbol maps a portfolio ticker to the provider symbol by appending the exchange suffix
// unless the ticker already carries one.
func (a *Aggregator) Symbol(ticker string) string {
	if a.cfg.TickerSuffix == "" || strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + a.cfg.TickerSuffix
}
