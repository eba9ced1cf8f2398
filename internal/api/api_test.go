package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() *RetryConfig {
	return &RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond}
}

func TestDoAppliesHeadersAndBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "yes", r.Header.Get("X-Request"))
		w.Write([]byte(`{"price": 12.5}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithHeader("Accept", "application/json"))
	resp, err := c.GET(context.Background(), "/quote", map[string]string{"X-Request": "yes"})
	require.NoError(t, err)

	var out struct {
		Price float64 `json:"price"`
	}
	require.NoError(t, resp.ParseJSON(&out))
	assert.Equal(t, 12.5, out.Price)
}

func TestHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).GET(context.Background(), "/")
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.True(t, httpErr.Retryable())
	assert.Equal(t, "HTTP 429: slow down", err.Error())

	assert.False(t, (&HTTPError{StatusCode: 404}).Retryable())
	assert.True(t, (&HTTPError{StatusCode: 503}).Retryable())
}

func TestDoWithRetryRecovers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := NewClient(WithBaseURL(srv.URL)).DoWithRetry(NewRequest(http.MethodGet, "/"), fastRetry())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.String())
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoWithRetryGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).DoWithRetry(NewRequest(http.MethodGet, "/"), fastRetry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 retry attempts failed")
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoWithRetrySkipsClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).DoWithRetry(NewRequest(http.MethodGet, "/"), fastRetry())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoWithRetryStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := &RetryConfig{MaxAttempts: 5, InitialWait: time.Hour}

	start := time.Now()
	_, err := NewClient(WithBaseURL(srv.URL)).DoWithRetry(NewRequest(http.MethodGet, "/").WithContext(ctx), cfg)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(20, 1))
	start := time.Now()
	for k := 0; k < 3; k++ {
		_, err := c.GET(context.Background(), "/")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)

	assert.Nil(t, NewClient(WithRateLimit(0, 5)).limiter)
}
