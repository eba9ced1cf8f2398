package interfaces

import (
	"context"

	"portfolio-advisor/internal/types"
)

// FeatureExtractor flattens a data envelope into a feature record. It never fails; problems are
// reported through the record's Errors.
type FeatureExtractor interface {
	Extract(ctx context.Context, env *types.StockDataEnvelope) types.FeatureRecord
}

// SentimentAggregator scores the text carried by an envelope.
type SentimentAggregator interface {
	Aggregate(ctx context.Context, env *types.StockDataEnvelope) types.SentimentRecord
}

type Decider interface {
	Decide(ctx context.Context, features types.FeatureRecord, sentiment types.SentimentRecord) types.Recommendation
}

// Analyzer turns envelopes into recommendations, one per envelope, in input order.
type Analyzer interface {
	Analyze(ctx context.Context, envs []types.StockDataEnvelope) []types.Recommendation
}
