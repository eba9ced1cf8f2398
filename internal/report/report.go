package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gocarina/gocsv"

	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/types"
)

// CSVWriter writes one CSV file per analysis run.
type CSVWriter struct {
	dir   string
	debug bool
	now   func() time.Time
}

var _ interfaces.Reporter = (*CSVWriter)(nil)

func NewCSVWriter(cfg store.ReportConfig) *CSVWriter {
	return &CSVWriter{dir: cfg.OutputDir, debug: cfg.DebugFeatures, now: time.Now}
}

type row struct {
	Ticker        string `csv:"ticker"`
	Action        string `csv:"recommendation"`
	Confidence    string `csv:"confidence"`
	Timeframe     string `csv:"timeframe"`
	Justification string `csv:"justification"`
}

type debugRow struct {
	Ticker        string `csv:"ticker"`
	Action        string `csv:"recommendation"`
	Confidence    string `csv:"confidence"`
	Timeframe     string `csv:"timeframe"`
	Justification string `csv:"justification"`
	RSI           string `csv:"rsi_14_day"`
	Sentiment     string `csv:"overall_sentiment"`
	Valuation     string `csv:"valuation_description"`
}

// Write stores the run under <dir>/<session>_<timestamp>.csv and returns the path.
func (w *CSVWriter) Write(summary types.RunSummary) (string, error) {
	if w.dir == "" {
		return "", nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", err
	}
	ts := summary.StartedAt
	if ts.IsZero() {
		ts = w.now()
	}
	name := fmt.Sprintf("%s_%s.csv", fileSafe(summary.SessionID), ts.Format("20060102-150405"))
	outPath := filepath.Join(w.dir, name)

	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if w.debug {
		rows := make([]*debugRow, 0, len(summary.Recommendations))
		for _, r := range summary.Recommendations {
			rows = append(rows, newDebugRow(r))
		}
		err = gocsv.Marshal(&rows, out)
	} else {
		rows := make([]*row, 0, len(summary.Recommendations))
		for _, r := range summary.Recommendations {
			rows = append(rows, newRow(r))
		}
		err = gocsv.Marshal(&rows, out)
	}
	if err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return outPath, nil
}

func newRow(r types.Recommendation) *row {
	return &row{
		Ticker:        r.Ticker,
		Action:        string(r.Action),
		Confidence:    fmt.Sprintf("%.2f", r.Confidence),
		Timeframe:     r.Timeframe,
		Justification: r.Justification,
	}
}

func newDebugRow(r types.Recommendation) *debugRow {
	base := newRow(r)
	d := &debugRow{
		Ticker:        base.Ticker,
		Action:        base.Action,
		Confidence:    base.Confidence,
		Timeframe:     base.Timeframe,
		Justification: base.Justification,
	}
	if r.Debug == nil {
		return d
	}
	if r.Debug.RSI14 != nil {
		d.RSI = fmt.Sprintf("%.2f", *r.Debug.RSI14)
	}
	d.Sentiment = fmt.Sprintf("%.4f", r.Debug.OverallSentiment)
	if r.Debug.ValuationDescription != nil {
		d.Valuation = *r.Debug.ValuationDescription
	}
	return d
}

// Render prints the decisions as an aligned table followed by the run totals.
func Render(w io.Writer, summary types.RunSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tACTION\tCONFIDENCE\tTIMEFRAME\tJUSTIFICATION")
	for _, r := range summary.Recommendations {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n", r.Ticker, r.Action, r.Confidence, r.Timeframe, r.Justification)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d holdings: %d buy, %d sell, %d hold, %d error. Average confidence %.2f.\n",
		len(summary.Recommendations),
		summary.Counts[types.ActionBuy],
		summary.Counts[types.ActionSell],
		summary.Counts[types.ActionHold],
		summary.Counts[types.ActionError],
		summary.AverageConfidence)
	if err == nil && summary.ReportPath != "" {
		_, err = fmt.Fprintf(w, "Report written to %s\n", summary.ReportPath)
	}
	return err
}

func fileSafe(s string) string {
	if s == "" {
		return "run"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
