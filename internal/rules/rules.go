package rules

import (
	"fmt"
	"math"
	"strings"

	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/types"
)

// Inputs is the slice of features and sentiment the rules look at.
type Inputs struct {
	RSI       *float64
	Price     *float64
	SMA20     *float64
	SMA50     *float64
	Sentiment float64
	Valuation string
}

func NewInputs(f types.FeatureRecord, s types.SentimentRecord) Inputs {
	sent := s.Overall
	if math.IsNaN(sent) {
		sent = 0
	}
	return Inputs{
		RSI:       f.RSI14,
		Price:     f.CurrentPrice,
		SMA20:     f.SMA20,
		SMA50:     f.SMA50,
		Sentiment: sent,
		Valuation: strings.ToLower(strings.TrimSpace(f.Valuation())),
	}
}

// Proposal is a rule's suggested decision.
type Proposal struct {
	Action     types.Action
	Confidence float64
	Timeframe  string
	Clauses    []string
}

// Rule inspects the inputs and either proposes a decision or passes.
type Rule func(in Inputs) (Proposal, bool)

// OversoldValueBuy fires on oversold RSI, positive sentiment and an attractive valuation.
func OversoldValueBuy(cfg store.RulesConfig) Rule {
	return func(in Inputs) (Proposal, bool) {
		rsi, ok := value(in.RSI, false)
		if !ok || rsi >= cfg.RSIOversold || in.Sentiment <= cfg.StrongSentiment {
			return Proposal{}, false
		}
		if !oneOf(in.Valuation, cfg.UndervaluedLabels) {
			return Proposal{}, false
		}
		return Proposal{
			Action:     types.ActionBuy,
			Confidence: cfg.ValuationConfidence,
			Timeframe:  types.TimeframeMedium,
			Clauses: []string{
				fmt.Sprintf("RSI indicates oversold conditions (<%g).", cfg.RSIOversold),
				fmt.Sprintf("Positive overall news sentiment (%.2f).", in.Sentiment),
				fmt.Sprintf("Valuation appears attractive (%s).", in.Valuation),
			},
		}, true
	}
}

// UptrendBuy fires when price > SMA20 > SMA50 with mildly positive sentiment.
func UptrendBuy(cfg store.RulesConfig) Rule {
	return func(in Inputs) (Proposal, bool) {
		price, sma20, sma50, ok := trend(in)
		if !ok || !(price > sma20 && sma20 > sma50) || in.Sentiment <= cfg.MildSentiment {
			return Proposal{}, false
		}
		return Proposal{
			Action:     types.ActionBuy,
			Confidence: cfg.TrendConfidence,
			Timeframe:  types.TimeframeShort,
			Clauses: []string{
				"Positive short-term price trend (Price > SMA20 > SMA50).",
				fmt.Sprintf("Slightly positive news sentiment (%.2f).", in.Sentiment),
			},
		}, true
	}
}

// OverboughtValueSell fires on overbought RSI, negative sentiment and a stretched valuation.
func OverboughtValueSell(cfg store.RulesConfig) Rule {
	return func(in Inputs) (Proposal, bool) {
		rsi, ok := value(in.RSI, false)
		if !ok || rsi <= cfg.RSIOverbought || in.Sentiment >= -cfg.StrongSentiment {
			return Proposal{}, false
		}
		if !oneOf(in.Valuation, cfg.OvervaluedLabels) {
			return Proposal{}, false
		}
		return Proposal{
			Action:     types.ActionSell,
			Confidence: cfg.ValuationConfidence,
			Timeframe:  types.TimeframeMedium,
			Clauses: []string{
				fmt.Sprintf("RSI indicates overbought conditions (>%g).", cfg.RSIOverbought),
				fmt.Sprintf("Negative overall news sentiment (%.2f).", in.Sentiment),
				fmt.Sprintf("Valuation appears stretched (%s).", in.Valuation),
			},
		}, true
	}
}

// DowntrendSell fires when price < SMA20 < SMA50 with mildly negative sentiment.
func DowntrendSell(cfg store.RulesConfig) Rule {
	return func(in Inputs) (Proposal, bool) {
		price, sma20, sma50, ok := trend(in)
		if !ok || !(price < sma20 && sma20 < sma50) || in.Sentiment >= -cfg.MildSentiment {
			return Proposal{}, false
		}
		return Proposal{
			Action:     types.ActionSell,
			Confidence: cfg.TrendConfidence,
			Timeframe:  types.TimeframeShort,
			Clauses: []string{
				"Negative short-term price trend (Price < SMA20 < SMA50).",
				fmt.Sprintf("Slightly negative news sentiment (%.2f).", in.Sentiment),
			},
		}, true
	}
}

// value unwraps an optional number. With requireNonZero a zero reads as missing.
func value(p *float64, requireNonZero bool) (float64, bool) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	if requireNonZero && *p == 0 {
		return 0, false
	}
	return *p, true
}

func trend(in Inputs) (price, sma20, sma50 float64, ok bool) {
	var okP, ok20, ok50 bool
	price, okP = value(in.Price, true)
	sma20, ok20 = value(in.SMA20, true)
	sma50, ok50 = value(in.SMA50, true)
	return price, sma20, sma50, okP && ok20 && ok50
}

func oneOf(v string, labels []string) bool {
	if v == "" {
		return false
	}
	for _, l := range labels {
		if strings.EqualFold(strings.TrimSpace(l), v) {
			return true
		}
	}
	return false
}
