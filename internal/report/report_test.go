package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/types"
)

func rsi(v float64) *float64 { return &v }
func label(s string) *string { return &s }

func sampleSummary() types.RunSummary {
	recs := []types.Recommendation{
		types.NewRecommendation("AAPL", types.ActionBuy, 0.75, types.TimeframeMedium, []string{"Oversold with positive sentiment."}),
		types.ErrorRecommendation("GONE", "Could not retrieve essential market data for GONE."),
	}
	recs[0].Debug = &types.RawFeatures{RSI14: rsi(30.123), OverallSentiment: 0.2, ValuationDescription: label("Undervalued")}
	s := types.Summarize("sess/1", recs)
	s.StartedAt = time.Date(2024, 3, 1, 16, 30, 0, 0, time.UTC)
	return s
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w := NewCSVWriter(store.ReportConfig{OutputDir: dir})

	path, err := w.Write(sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sess_1_20240301-163000.csv"), path)

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"ticker", "recommendation", "confidence", "timeframe", "justification"}, records[0])
	assert.Equal(t, []string{"AAPL", "BUY", "0.75", "Medium-Term", "Oversold with positive sentiment."}, records[1])
	assert.Equal(t, []string{"GONE", "ERROR", "0.00", "N/A", "Could not retrieve essential market data for GONE."}, records[2])
}

func TestCSVWriterDebugColumns(t *testing.T) {
	w := NewCSVWriter(store.ReportConfig{OutputDir: t.TempDir(), DebugFeatures: true})
	path, err := w.Write(sampleSummary())
	require.NoError(t, err)

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"rsi_14_day", "overall_sentiment", "valuation_description"}, records[0][5:])
	assert.Equal(t, []string{"30.12", "0.2000", "Undervalued"}, records[1][5:])
	assert.Equal(t, []string{"", "", ""}, records[2][5:])
}

func TestCSVWriterDisabled(t *testing.T) {
	path, err := NewCSVWriter(store.ReportConfig{}).Write(sampleSummary())
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestRender(t *testing.T) {
	s := sampleSummary()
	s.ReportPath = "reports/x.csv"

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, s))
	out := buf.String()

	assert.Contains(t, out, "TICKER")
	assert.Contains(t, out, "AAPL    BUY")
	assert.Contains(t, out, "2 holdings: 1 buy, 0 sell, 0 hold, 1 error. Average confidence 0.75.")
	assert.Contains(t, out, "Report written to reports/x.csv")
}
