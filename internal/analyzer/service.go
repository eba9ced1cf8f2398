package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/logger"
	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/types"
)

// Service runs a full analysis for an upload session: load holdings, fetch data, analyze, report.
type Service struct {
	holdings interfaces.HoldingsStore
	builder  interfaces.EnvelopeBuilder
	analyzer interfaces.Analyzer
	reporter interfaces.Reporter
	cfg      store.PipelineConfig
	now      func() time.Time
}

// NewService wires a Service. reporter may be nil.
func NewService(holdings interfaces.HoldingsStore, builder interfaces.EnvelopeBuilder, analyzer interfaces.Analyzer, reporter interfaces.Reporter, cfg store.PipelineConfig) *Service {
	return &Service{
		holdings: holdings,
		builder:  builder,
		analyzer: analyzer,
		reporter: reporter,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *Service) Run(ctx context.Context, sessionID string) (types.RunSummary, error) {
	started := s.now()

	holdings, err := s.holdings.List(ctx, sessionID)
	if err != nil {
		return types.RunSummary{}, fmt.Errorf("load holdings for session %s: %w", sessionID, err)
	}
	if len(holdings) == 0 {
		logger.Warn(ctx, "Session has no holdings", "session_id", sessionID)
		summary := types.Summarize(sessionID, []types.Recommendation{})
		summary.StartedAt = started
		return summary, nil
	}

	envs := s.Envelopes(ctx, holdings)
	recs := s.analyzer.Analyze(ctx, envs)

	summary := types.Summarize(sessionID, recs)
	summary.StartedAt = started
	summary.Duration = s.now().Sub(started)

	if s.reporter != nil {
		path, err := s.reporter.Write(summary)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to write report", err, "session_id", sessionID)
		} else {
			summary.ReportPath = path
		}
	}

	logger.Info(ctx, "Analysis run completed",
		"session_id", sessionID,
		"holdings", len(holdings),
		"buy", summary.Counts[types.ActionBuy],
		"sell", summary.Counts[types.ActionSell],
		"hold", summary.Counts[types.ActionHold],
		"error", summary.Counts[types.ActionError],
		"avg_confidence", summary.AverageConfidence,
		"duration_ms", summary.Duration.Milliseconds(),
	)
	return summary, nil
}

// Envelopes fetches data for every holding with bounded concurrency. Macro data is loaded once
// and shared; results keep the order of holdings.
func (s *Service) Envelopes(ctx context.Context, holdings []types.Holding) []types.StockDataEnvelope {
	macro, macroErrs := s.builder.Macro(ctx)

	out := make([]types.StockDataEnvelope, len(holdings))
	workers := s.cfg.FetchWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range holdings {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			hctx := ctx
			if s.cfg.HoldingTimeout > 0 {
				var cancel context.CancelFunc
				hctx, cancel = context.WithTimeout(ctx, s.cfg.HoldingTimeout)
				defer cancel()
			}
			env := s.builder.Envelope(hctx, holdings[i], macro)
			env.Errors = append(env.Errors, macroErrs...)
			out[i] = env
		}(i)
	}
	wg.Wait()
	return out
}
