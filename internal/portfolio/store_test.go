package portfolio

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/types"
)

func price(v float64) *float64 { return &v }

func sampleHoldings() []types.Holding {
	d := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	return []types.Holding{
		{Ticker: "MSFT", Quantity: 4},
		{Ticker: "AAPL", Quantity: 10, PurchasePrice: price(150.25), PurchaseDate: &d},
		{Ticker: "GOOG", Quantity: 1, PurchasePrice: price(0)},
	}
}

func stores(t *testing.T) map[string]interfaces.HoldingsStore {
	t.Helper()
	sq, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "advisor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]interfaces.HoldingsStore{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Replace(ctx, "s1", sampleHoldings()))

			got, err := s.List(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, sampleHoldings(), got, "insertion order and optional fields survive")
		})
	}
}

func TestStoreReplaceOverwritesSession(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Replace(ctx, "s1", sampleHoldings()))
			require.NoError(t, s.Replace(ctx, "s2", []types.Holding{{Ticker: "TSLA", Quantity: 2}}))
			require.NoError(t, s.Replace(ctx, "s1", []types.Holding{{Ticker: "NVDA", Quantity: 7}}))

			got, err := s.List(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, []types.Holding{{Ticker: "NVDA", Quantity: 7}}, got)

			other, err := s.List(ctx, "s2")
			require.NoError(t, err)
			assert.Len(t, other, 1)

			ids, err := s.Sessions(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"s1", "s2"}, ids)
		})
	}
}

func TestStoreUnknownSession(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.List(context.Background(), "missing")
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Replace(context.Background(), "keep", sampleHoldings()))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.List(context.Background(), "keep")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
