package types

// Sentiment text sources.
const (
	SourceHeadlines      = "headlines"
	SourceAnalystReports = "analyst_reports"
	SourceNews           = "news"
)

// SentimentRecord holds averaged compound scores in [-1, 1]. Sources only has an entry for a
// source that contributed at least one scored text; Overall is 0.0 when nothing was scored.
type SentimentRecord struct {
	Ticker  string             `json:"ticker"`
	Overall float64            `json:"overall_avg_sentiment"`
	Sources map[string]float64 `json:"sources,omitempty"`
	Counts  map[string]int     `json:"counts,omitempty"`
	Errors  []string           `json:"errors"`
}

// Source returns the average for one source and whether it was present.
func (s SentimentRecord) Source(name string) (float64, bool) {
	v, ok := s.Sources[name]
	return v, ok
}

// Scored returns the total number of texts that contributed to Overall.
func (s SentimentRecord) Scored() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}
