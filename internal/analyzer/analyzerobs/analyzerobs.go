package analyzerobs

import (
	"context"
	"time"

	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/logger"
	"portfolio-advisor/internal/trace"
	"portfolio-advisor/internal/types"
)

type observableAnalyzer struct {
	analyzer interfaces.Analyzer
}

var _ interfaces.Analyzer = (*observableAnalyzer)(nil)

func Wrap(a interfaces.Analyzer) interfaces.Analyzer {
	return &observableAnalyzer{
		analyzer: a,
	}
}

func (oa *observableAnalyzer) Analyze(ctx context.Context, envs []types.StockDataEnvelope) []types.Recommendation {
	ctx, span := trace.StartSpan(ctx, "analyzer.Analyze")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting analysis batch",
		"holdings", len(envs),
	)

	recs := oa.analyzer.Analyze(ctx, envs)

	errs := 0
	for _, r := range recs {
		if r.Action == types.ActionError {
			errs++
		}
	}
	logger.InfoSkip(ctx, 1, "Analysis batch completed",
		"holdings", len(envs),
		"recommendations", len(recs),
		"errors", errs,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return recs
}

type observableDecider struct {
	decider interfaces.Decider
}

var _ interfaces.Decider = (*observableDecider)(nil)

// WrapDecider adds a span and a debug log around each rule evaluation.
func WrapDecider(d interfaces.Decider) interfaces.Decider {
	return &observableDecider{
		decider: d,
	}
}

func (od *observableDecider) Decide(ctx context.Context, f types.FeatureRecord, s types.SentimentRecord) types.Recommendation {
	ctx, span := trace.StartSpan(ctx, "rules.Decide")
	defer span.End()

	start := time.Now()
	rec := od.decider.Decide(ctx, f, s)

	logger.DebugSkip(ctx, 1, "Rules evaluated",
		"ticker", f.Ticker,
		"action", rec.Action,
		"confidence", rec.Confidence,
		"clauses", len(rec.Clauses),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec
}
