package sentiment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/types"
)

// TextScorer scores one piece of text into [-1, 1].
type TextScorer interface {
	Score(text string) float64
}

// Aggregator averages text scores per source and over the union of all sources.
type Aggregator struct {
	scorer TextScorer
	cfg    store.SentimentConfig
}

func NewAggregator(scorer TextScorer, cfg store.SentimentConfig) *Aggregator {
	return &Aggregator{scorer: scorer, cfg: cfg}
}

// Aggregate never panics. A text the scorer cannot handle counts as 0.0 and adds an error
// naming its source; every other text keeps its score.
func (a *Aggregator) Aggregate(_ context.Context, env *types.StockDataEnvelope) types.SentimentRecord {
	rec := types.SentimentRecord{Errors: []string{}}
	if env != nil {
		rec.Ticker = env.Ticker
	}

	var all []float64
	for _, src := range a.sources(env) {
		scores, errs := a.scoreAll(src)
		rec.Errors = append(rec.Errors, errs...)
		if len(scores) == 0 {
			continue
		}
		if rec.Sources == nil {
			rec.Sources = make(map[string]float64)
			rec.Counts = make(map[string]int)
		}
		rec.Sources[src.name] = mean(scores)
		rec.Counts[src.name] = len(scores)
		all = append(all, scores...)
	}
	rec.Overall = mean(all)
	return rec
}

type textSource struct {
	name  string
	texts []string
}

func (a *Aggregator) sources(env *types.StockDataEnvelope) []textSource {
	var out []textSource
	if a.cfg.Headlines {
		out = append(out, textSource{types.SourceHeadlines, Headlines(env)})
	}
	if a.cfg.AnalystReports {
		out = append(out, textSource{types.SourceAnalystReports, Abstracts(env)})
	}
	if a.cfg.News {
		out = append(out, textSource{types.SourceNews, env.GetNews()})
	}
	return out
}

func (a *Aggregator) scoreAll(src textSource) ([]float64, []string) {
	var scores []float64
	var errs []string
	for _, t := range src.texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		v, err := a.score(t)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Error in sentiment analysis for %s: %v", src.name, err))
		}
		scores = append(scores, v)
	}
	return scores, errs
}

func (a *Aggregator) score(text string) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = 0.0, fmt.Errorf("%v", r)
		}
	}()
	v = a.scorer.Score(text)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0.0, fmt.Errorf("invalid score %v", v)
	}
	return v, nil
}

// Headlines returns the significant-development headlines of an envelope.
func Headlines(env *types.StockDataEnvelope) []string {
	devs := env.GetFundamentals().GetSignificantDevelopments()
	out := make([]string, 0, len(devs))
	for _, d := range devs {
		out = append(out, d.Headline)
	}
	return out
}

// Abstracts returns the text of every analyst report hit, falling back to the title.
func Abstracts(env *types.StockDataEnvelope) []string {
	var out []string
	for _, r := range env.GetAnalystReports() {
		for _, h := range r.Hits {
			text := h.Abstract
			if strings.TrimSpace(text) == "" {
				text = h.Title
			}
			out = append(out, text)
		}
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
