package analyzer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-advisor/internal/portfolio"
	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/types"
)

type fakeBuilder struct {
	mu         sync.Mutex
	macroCalls int
	deadlines  map[string]bool
}

func (b *fakeBuilder) Macro(context.Context) (map[string]types.MacroSeries, []string) {
	b.mu.Lock()
	b.macroCalls++
	b.mu.Unlock()
	return map[string]types.MacroSeries{"gdp_us": {Data: map[string]*float64{"2022": f64(1)}}},
		[]string{"Failed to fetch inflation_us_cpi data for USA: timeout"}
}

func (b *fakeBuilder) Envelope(ctx context.Context, h types.Holding, macro map[string]types.MacroSeries) types.StockDataEnvelope {
	_, ok := ctx.Deadline()
	b.mu.Lock()
	if b.deadlines == nil {
		b.deadlines = make(map[string]bool)
	}
	b.deadlines[h.Ticker] = ok
	b.mu.Unlock()

	env := types.StockDataEnvelope{Ticker: h.Ticker, Holding: &h, Macro: macro}
	if h.Ticker != "GONE" {
		env.Chart = rising(60)
	}
	return env
}

type fakeReporter struct {
	got  types.RunSummary
	err  error
	hits int
}

func (r *fakeReporter) Write(s types.RunSummary) (string, error) {
	r.hits++
	r.got = s
	if r.err != nil {
		return "", r.err
	}
	return "reports/" + s.SessionID + ".csv", nil
}

func newService(t *testing.T, holdings []types.Holding, rep *fakeReporter) (*Service, *fakeBuilder) {
	t.Helper()
	st := portfolio.NewMemoryStore()
	if holdings != nil {
		require.NoError(t, st.Replace(context.Background(), "s1", holdings))
	}
	b := &fakeBuilder{}
	cfg := store.Default().Pipeline
	cfg.FetchWorkers = 2
	var svc *Service
	if rep != nil {
		svc = NewService(st, b, newPipeline(2), rep, cfg)
	} else {
		svc = NewService(st, b, newPipeline(2), nil, cfg)
	}
	clock := time.Date(2024, 3, 1, 16, 30, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, b
}

func TestServiceRun(t *testing.T) {
	rep := &fakeReporter{}
	svc, b := newService(t, []types.Holding{
		{Ticker: "AAPL", Quantity: 1},
		{Ticker: "GONE", Quantity: 2},
		{Ticker: "MSFT", Quantity: 3},
	}, rep)

	summary, err := svc.Run(context.Background(), "s1")
	require.NoError(t, err)

	require.Len(t, summary.Recommendations, 3)
	assert.Equal(t, "AAPL", summary.Recommendations[0].Ticker)
	assert.Equal(t, types.ActionError, summary.Recommendations[1].Action)
	assert.Contains(t, summary.Recommendations[1].Justification, "Failed to fetch inflation_us_cpi data for USA: timeout")
	assert.Equal(t, "MSFT", summary.Recommendations[2].Ticker)

	assert.Equal(t, 1, summary.Counts[types.ActionError])
	assert.Equal(t, 1, b.macroCalls, "macro data is fetched once per run")
	assert.True(t, b.deadlines["AAPL"], "each holding gets its own fetch budget")

	assert.Equal(t, "reports/s1.csv", summary.ReportPath)
	assert.Equal(t, 1, rep.hits)
	assert.Equal(t, "s1", rep.got.SessionID)
	assert.Equal(t, time.Second, summary.Duration)
}

func TestServiceRunReportFailureIsNotFatal(t *testing.T) {
	rep := &fakeReporter{err: errors.New("disk full")}
	svc, _ := newService(t, []types.Holding{{Ticker: "AAPL", Quantity: 1}}, rep)

	summary, err := svc.Run(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, summary.Recommendations, 1)
	assert.Empty(t, summary.ReportPath)
}

func TestServiceRunEmptySession(t *testing.T) {
	rep := &fakeReporter{}
	svc, b := newService(t, []types.Holding{}, rep)

	summary, err := svc.Run(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, summary.Recommendations)
	assert.Zero(t, summary.AverageConfidence)
	assert.Zero(t, b.macroCalls)
	assert.Zero(t, rep.hits)
}

func TestServiceRunUnknownSession(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	_, err := svc.Run(context.Background(), "nope")
	require.ErrorIs(t, err, portfolio.ErrSessionNotFound)
}

func TestServiceEnvelopesKeepOrder(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	var hs []types.Holding
	for _, tk := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		hs = append(hs, types.Holding{Ticker: tk, Quantity: 1})
	}
	envs := svc.Envelopes(context.Background(), hs)
	require.Len(t, envs, len(hs))
	for k, env := range envs {
		assert.Equal(t, hs[k].Ticker, env.Ticker)
		assert.Contains(t, env.Errors, "Failed to fetch inflation_us_cpi data for USA: timeout")
	}
}
