package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"portfolio-advisor/internal/analyzer"
	"portfolio-advisor/internal/analyzer/analyzerobs"
	"portfolio-advisor/internal/datasource"
	"portfolio-advisor/internal/datasource/datasourceobs"
	"portfolio-advisor/internal/features"
	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/logger"
	"portfolio-advisor/internal/news"
	"portfolio-advisor/internal/portfolio"
	"portfolio-advisor/internal/report"
	"portfolio-advisor/internal/report/reportobs"
	"portfolio-advisor/internal/rules"
	"portfolio-advisor/internal/sentiment"
	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/trace"
)

// initializeSystem loads .env and initializes the logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// openStore opens the holdings store named by the storage config.
func openStore(ctx context.Context, cfg *store.Config) (interfaces.HoldingsStore, error) {
	if cfg.Storage.Driver == "memory" {
		logger.Warn(ctx, "Using in-memory holdings store - uploads are lost on exit")
		return portfolio.NewMemoryStore(), nil
	}
	return portfolio.NewSQLiteStore(cfg.Storage.Path)
}

// initializeBuilder wires the market, macro and news providers behind one envelope builder.
func initializeBuilder(ctx context.Context, cfg *store.Config) (interfaces.EnvelopeBuilder, error) {
	cache, err := datasource.NewCache(cfg.Data.CacheDir, cfg.Data.CacheTTL)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		if err := cache.CleanupExpired(); err != nil {
			logger.Warn(ctx, "Failed to clean response cache", "error", err)
		}
	}

	market := datasourceobs.Wrap(datasource.NewYahoo(cfg.Data, cache))
	macro := datasource.NewDataBank(cfg.Data, cache)

	var headlines interfaces.HeadlineSource
	if cfg.News.Enabled {
		headlines = news.NewService(cfg.News)
		logger.Info(ctx, "News headlines enabled", "max_headlines", cfg.News.MaxHeadlines)
	}
	return datasource.NewAggregator(market, macro, headlines, cfg.Data, cfg.News.MaxHeadlines), nil
}

// initializeAnalyzer builds the recommendation pipeline with observability.
func initializeAnalyzer(cfg *store.Config) interfaces.Analyzer {
	pipeline := analyzer.NewPipeline(
		features.NewExtractor(cfg.Indicators),
		sentiment.NewAggregator(sentiment.NewScorer(), cfg.Sentiment),
		analyzerobs.WrapDecider(rules.New(cfg.Rules)),
		cfg.Pipeline.Workers,
	)
	return analyzerobs.Wrap(pipeline)
}

func initializeService(ctx context.Context, cfg *store.Config, holdings interfaces.HoldingsStore) (*analyzer.Service, error) {
	builder, err := initializeBuilder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var reporter interfaces.Reporter
	if cfg.Report.OutputDir != "" {
		reporter = reportobs.Wrap(report.NewCSVWriter(cfg.Report))
	}
	return analyzer.NewService(holdings, builder, initializeAnalyzer(cfg), reporter, cfg.Pipeline), nil
}
