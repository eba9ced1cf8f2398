package datasourceobs

import (
	"context"
	"time"

	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/logger"
	"portfolio-advisor/internal/trace"
	"portfolio-advisor/internal/types"
)

type observableMarketData struct {
	md interfaces.MarketData
}

var _ interfaces.MarketData = (*observableMarketData)(nil)

func Wrap(md interfaces.MarketData) interfaces.MarketData {
	return &observableMarketData{
		md: md,
	}
}

func (o *observableMarketData) Chart(ctx context.Context, ticker string) (*types.Chart, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.Chart")
	defer span.End()

	start := time.Now()
	chart, err := o.md.Chart(ctx, ticker)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Chart fetch failed", err,
			"ticker", ticker,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Chart fetched",
		"ticker", ticker,
		"points", len(chart.ClosePrices),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return chart, nil
}

func (o *observableMarketData) Fundamentals(ctx context.Context, ticker string) (*types.Fundamentals, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.Fundamentals")
	defer span.End()

	start := time.Now()
	fund, err := o.md.Fundamentals(ctx, ticker)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Insights fetch failed", err,
			"ticker", ticker,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Insights fetched",
		"ticker", ticker,
		"developments", len(fund.SignificantDevelopments),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return fund, nil
}

func (o *observableMarketData) AnalystReports(ctx context.Context, ticker string) ([]types.AnalystReport, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.AnalystReports")
	defer span.End()

	start := time.Now()
	reports, err := o.md.AnalystReports(ctx, ticker)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Analyst opinions fetch failed", err,
			"ticker", ticker,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Analyst opinions fetched",
		"ticker", ticker,
		"reports", len(reports),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return reports, nil
}
