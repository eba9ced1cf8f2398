package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"
)

// Scorer wraps the VADER analyzer. Score returns the compound value in [-1, 1], which only
// depends on the input text.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewScorer loads the VADER lexicon and adds market vocabulary it does not cover. Words VADER
// already rates keep their rating.
func NewScorer() *Scorer {
	a := govader.NewSentimentIntensityAnalyzer()
	for w, v := range marketTerms() {
		if _, ok := a.Lexicon[w]; !ok {
			a.Lexicon[w] = v
		}
	}
	return &Scorer{analyzer: a}
}

// Score reads blank text as neutral.
func (s *Scorer) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0.0
	}
	return s.analyzer.PolarityScores(text).Compound
}
