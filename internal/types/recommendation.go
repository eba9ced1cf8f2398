package types

import (
	"math"
	"strings"
	"time"
)

type Action string

const (
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionHold  Action = "HOLD"
	ActionError Action = "ERROR"
)

const (
	TimeframeShort  = "Short-Term"
	TimeframeMedium = "Medium-Term"
	TimeframeNA     = "N/A"
)

// Recommendation is the final decision for one holding.
type Recommendation struct {
	Ticker        string       `json:"ticker"`
	Action        Action       `json:"recommendation"`
	Confidence    float64      `json:"confidence_score"`
	Timeframe     string       `json:"timeframe"`
	Justification string       `json:"justification"`
	Clauses       []string     `json:"clauses"`
	Debug         *RawFeatures `json:"raw_features_considered,omitempty"`
}

// RawFeatures records the inputs a rule decision was based on.
type RawFeatures struct {
	RSI14                *float64 `json:"rsi_14_day"`
	OverallSentiment     float64  `json:"overall_sentiment"`
	ValuationDescription *string  `json:"valuation_description"`
}

// NewRecommendation rounds the confidence to two decimals and joins the clauses.
func NewRecommendation(ticker string, action Action, confidence float64, timeframe string, clauses []string) Recommendation {
	cs := append([]string(nil), clauses...)
	return Recommendation{
		Ticker:        ticker,
		Action:        action,
		Confidence:    RoundConfidence(confidence),
		Timeframe:     timeframe,
		Justification: strings.Join(cs, " "),
		Clauses:       cs,
	}
}

// ErrorRecommendation builds the ERROR decision used when a holding cannot be analysed.
func ErrorRecommendation(ticker, reason string) Recommendation {
	return NewRecommendation(ticker, ActionError, 0.0, TimeframeNA, []string{reason})
}

// RoundConfidence clamps to [0, 1] and rounds to two decimals.
func RoundConfidence(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	c = math.Max(0, math.Min(1, c))
	return math.Round(c*100) / 100
}

// RunSummary describes one analysis run over a session's holdings.
type RunSummary struct {
	SessionID         string           `json:"session_id"`
	StartedAt         time.Time        `json:"started_at"`
	Duration          time.Duration    `json:"duration"`
	Counts            map[Action]int   `json:"counts"`
	AverageConfidence float64          `json:"average_confidence"`
	Recommendations   []Recommendation `json:"recommendations"`
	ReportPath        string           `json:"report_path,omitempty"`
}

// Summarize counts actions and averages the confidence of non-ERROR decisions.
func Summarize(sessionID string, recs []Recommendation) RunSummary {
	s := RunSummary{
		SessionID:       sessionID,
		Counts:          make(map[Action]int),
		Recommendations: recs,
	}
	var sum float64
	var n int
	for _, r := range recs {
		s.Counts[r.Action]++
		if r.Action == ActionError {
			continue
		}
		sum += r.Confidence
		n++
	}
	if n > 0 {
		s.AverageConfidence = RoundConfidence(sum / float64(n))
	}
	return s
}
