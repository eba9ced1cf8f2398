package rules

import (
	"context"
	"fmt"
	"strings"

	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/types"
)

const neutralClause = "Market conditions and indicators appear neutral or mixed for this stock currently."

// Engine evaluates the buy rules and the sell rules as two ordered groups. Within a group the
// first rule that fires wins, so the trend buy is only consulted when the oversold value buy
// passes. When both groups fire the decision is demoted to HOLD with a conflict clause.
type Engine struct {
	cfg  store.RulesConfig
	buy  []Rule
	sell []Rule
}

func New(cfg store.RulesConfig) *Engine {
	return &Engine{
		cfg:  cfg,
		buy:  []Rule{OversoldValueBuy(cfg), UptrendBuy(cfg)},
		sell: []Rule{OverboughtValueSell(cfg), DowntrendSell(cfg)},
	}
}

// Decide never panics. A failure during evaluation yields HOLD at the error confidence with an
// error clause appended to whatever had been justified so far.
func (e *Engine) Decide(_ context.Context, f types.FeatureRecord, s types.SentimentRecord) (rec types.Recommendation) {
	var clauses []string
	debug := &types.RawFeatures{
		RSI14:                f.RSI14,
		OverallSentiment:     s.Overall,
		ValuationDescription: f.ValuationDescription,
	}
	defer func() {
		if r := recover(); r != nil {
			clauses = append(clauses, fmt.Sprintf("Error in rule engine: %v", r))
			rec = types.NewRecommendation(f.Ticker, types.ActionHold, e.cfg.ErrorConfidence, types.TimeframeMedium, clauses)
			rec.Debug = debug
		}
	}()

	in := NewInputs(f, s)
	buy, buyOK := first(e.buy, in)
	if buyOK {
		clauses = append(clauses, buy.Clauses...)
	}
	sell, sellOK := first(e.sell, in)
	if sellOK {
		clauses = append(clauses, sell.Clauses...)
	}

	var p Proposal
	switch {
	case buyOK && sellOK:
		p = e.conflict(clauses)
	case buyOK:
		p = buy
	case sellOK:
		p = sell
	default:
		p = Proposal{
			Action:     types.ActionHold,
			Confidence: e.cfg.DefaultConfidence,
			Timeframe:  types.TimeframeMedium,
			Clauses:    []string{neutralClause},
		}
	}
	clauses = p.Clauses

	rec = types.NewRecommendation(f.Ticker, p.Action, p.Confidence, p.Timeframe, clauses)
	if strings.TrimSpace(rec.Justification) == "" {
		rec = types.NewRecommendation(f.Ticker, types.ActionHold, e.cfg.DefaultConfidence, types.TimeframeMedium, []string{neutralClause})
	}
	rec.Debug = debug
	return rec
}

func (e *Engine) conflict(clauses []string) Proposal {
	out := append(append([]string(nil), clauses...), "Conflicting signals: buy and sell conditions are both met.")
	return Proposal{
		Action:     types.ActionHold,
		Confidence: e.cfg.ConflictConfidence,
		Timeframe:  types.TimeframeMedium,
		Clauses:    out,
	}
}

func first(group []Rule, in Inputs) (Proposal, bool) {
	for _, r := range group {
		if p, ok := r(in); ok {
			return p, true
		}
	}
	return Proposal{}, false
}
