package analyzer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/logger"
	"portfolio-advisor/internal/types"
)

const (
	stageFeatures  = "feature engineering"
	stageSentiment = "sentiment analysis"
	stageDecision  = "recommendation generation"
)

// Pipeline runs features, sentiment and rules for each envelope. One holding's failure becomes
// an ERROR decision for that holding only; the output always has one entry per input, in order.
type Pipeline struct {
	extractor interfaces.FeatureExtractor
	sentiment interfaces.SentimentAggregator
	decider   interfaces.Decider
	workers   int
}

var _ interfaces.Analyzer = (*Pipeline)(nil)

func NewPipeline(extractor interfaces.FeatureExtractor, sentiment interfaces.SentimentAggregator, decider interfaces.Decider, workers int) *Pipeline {
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{
		extractor: extractor,
		sentiment: sentiment,
		decider:   decider,
		workers:   workers,
	}
}

func (p *Pipeline) Analyze(ctx context.Context, envs []types.StockDataEnvelope) []types.Recommendation {
	if len(envs) == 0 {
		logger.Warn(ctx, "No holdings to analyze")
		return []types.Recommendation{}
	}
	logger.Info(ctx, "Starting portfolio analysis", "holdings", len(envs), "workers", p.workers)

	out := make([]types.Recommendation, len(envs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(p.workers, len(envs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = p.AnalyzeOne(ctx, &envs[i])
			}
		}()
	}
	for i := range envs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	logger.Info(ctx, "Finished portfolio analysis", "recommendations", len(out))
	return out
}

// AnalyzeOne produces exactly one decision for env.
func (p *Pipeline) AnalyzeOne(ctx context.Context, env *types.StockDataEnvelope) types.Recommendation {
	ticker := env.Ticker
	if ticker == "" {
		ticker = "Unknown Ticker"
	}
	if len(env.Errors) > 0 {
		logger.Warn(ctx, "Aggregated data has errors", "ticker", ticker, "errors", env.Errors)
	}

	if env.GetChart() == nil && env.GetFundamentals() == nil {
		reason := fmt.Sprintf("Could not retrieve essential market data for %s. Analysis cannot proceed. Errors: %s",
			ticker, joinErrors(env.Errors))
		logger.Error(ctx, "Skipping analysis due to missing critical data", "ticker", ticker)
		return types.ErrorRecommendation(ticker, reason)
	}
	if err := ctx.Err(); err != nil {
		return p.failed(ctx, ticker, "analysis", err)
	}

	var features types.FeatureRecord
	if err := runStage(func() { features = p.extractor.Extract(ctx, env) }); err != nil {
		return p.failed(ctx, ticker, stageFeatures, err)
	}
	if len(features.Errors) > 0 {
		logger.Warn(ctx, "Feature engineering reported errors", "ticker", ticker, "errors", features.Errors)
	}

	var sentiment types.SentimentRecord
	if err := runStage(func() { sentiment = p.sentiment.Aggregate(ctx, env) }); err != nil {
		return p.failed(ctx, ticker, stageSentiment, err)
	}
	if len(sentiment.Errors) > 0 {
		logger.Warn(ctx, "Sentiment analysis reported errors", "ticker", ticker, "errors", sentiment.Errors)
	}

	var rec types.Recommendation
	if err := runStage(func() { rec = p.decider.Decide(ctx, features, sentiment) }); err != nil {
		return p.failed(ctx, ticker, stageDecision, err)
	}
	if rec.Ticker == "" {
		rec.Ticker = ticker
	}

	logger.Recommendation(ctx, rec.Ticker, string(rec.Action), rec.Confidence, rec.Timeframe, rec.Justification)
	return rec
}

func (p *Pipeline) failed(ctx context.Context, ticker, stage string, err error) types.Recommendation {
	logger.StageFailure(ctx, ticker, stage, err)
	return types.ErrorRecommendation(ticker, fmt.Sprintf("Critical error during %s for %s: %v", stage, ticker, err))
}

// runStage converts a panic inside fn into an error.
func runStage(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	fn()
	return nil
}

func joinErrors(errs []string) string {
	if len(errs) == 0 {
		return "none reported"
	}
	return strings.Join(errs, "; ")
}
