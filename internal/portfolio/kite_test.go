package portfolio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kiteHoldingsJSON = `{"status":"success","data":[
	{"tradingsymbol":"infy","exchange":"NSE","quantity":12,"average_price":1420.5},
	{"tradingsymbol":"TCS","exchange":"NSE","quantity":0,"average_price":3300},
	{"tradingsymbol":"RELIANCE","exchange":"BSE","quantity":5,"average_price":2500},
	{"tradingsymbol":"HDFCBANK","exchange":"NSE","quantity":3,"average_price":0}
]}`

func TestKiteSourceHoldings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/portfolio/holdings", r.URL.Path)
		assert.Equal(t, "token key:secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(kiteHoldingsJSON))
	}))
	defer srv.Close()

	src, err := NewKiteSource(KiteParams{APIKey: "key", AccessToken: "secret", Exchange: "NSE", BaseURI: srv.URL})
	require.NoError(t, err)

	got, err := src.Holdings(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "INFY", got[0].Ticker)
	assert.Equal(t, 12, got[0].Quantity)
	require.NotNil(t, got[0].PurchasePrice)
	assert.Equal(t, 1420.5, *got[0].PurchasePrice)
	assert.Equal(t, "HDFCBANK", got[1].Ticker)
	assert.Nil(t, got[1].PurchasePrice)
}

func TestKiteSourceRequiresCredentials(t *testing.T) {
	_, err := NewKiteSource(KiteParams{APIKey: "key"})
	assert.Error(t, err)
}
