package interfaces

import (
	"context"

	"portfolio-advisor/internal/types"
)

type MarketData interface {
	Chart(ctx context.Context, ticker string) (*types.Chart, error)
	Fundamentals(ctx context.Context, ticker string) (*types.Fundamentals, error)
	AnalystReports(ctx context.Context, ticker string) ([]types.AnalystReport, error)
}

type MacroData interface {
	Series(ctx context.Context, country, indicator string) (*types.MacroSeries, error)
}

// HeadlineSource supplies recent news headlines for a ticker.
type HeadlineSource interface {
	Headlines(ctx context.Context, ticker string, limit int) ([]string, error)
}

// EnvelopeBuilder assembles per-holding envelopes. Macro data is loaded once and shared.
type EnvelopeBuilder interface {
	Macro(ctx context.Context) (map[string]types.MacroSeries, []string)
	Envelope(ctx context.Context, h types.Holding, macro map[string]types.MacroSeries) types.StockDataEnvelope
}
