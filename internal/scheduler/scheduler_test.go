package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := New(context.Background(), "analyze", func(context.Context) error { return nil })
	assert.Error(t, s.Register("every day"))
	assert.Error(t, s.Register("30 16 * * 1-5"), "a seconds field is required")
	require.NoError(t, s.Register("0 30 16 * * 1-5"))

	next := s.Next()
	require.False(t, next.IsZero())
	assert.Equal(t, 16, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.NotEqual(t, time.Saturday, next.Weekday())
	assert.NotEqual(t, time.Sunday, next.Weekday())
}

func TestSchedulerRunsJob(t *testing.T) {
	var runs atomic.Int32
	s := New(context.Background(), "analyze", func(context.Context) error {
		runs.Add(1)
		return errors.New("provider down")
	})
	require.NoError(t, s.Register("* * * * * *"))
	s.Start()

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
}

func TestRunNow(t *testing.T) {
	var got context.Context
	s := New(context.Background(), "analyze", func(ctx context.Context) error {
		got = ctx
		return nil
	})
	s.RunNow()
	assert.NotNil(t, got)
}

func TestRunSkippedAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	New(ctx, "analyze", func(context.Context) error { called = true; return nil }).RunNow()
	assert.False(t, called)
}
