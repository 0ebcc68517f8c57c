package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zeroBackoff struct{}

func (zeroBackoff) Next(int) time.Duration { return 0 }

func TestExpoJitter_Capped(t *testing.T) {
	b := ExpoJitter{Base: 10 * time.Millisecond, Max: 50 * time.Millisecond}
	assert.Equal(t, 10*time.Millisecond, b.Next(0))
	assert.Equal(t, 20*time.Millisecond, b.Next(1))
	assert.Equal(t, 50*time.Millisecond, b.Next(10))
	assert.Equal(t, 50*time.Millisecond, b.Next(1000))
}

func TestExpoJitter_Spread(t *testing.T) {
	b := ExpoJitter{Base: 100 * time.Millisecond, Max: time.Second, Jitter: 0.2}
	for i := 0; i < 50; i++ {
		d := b.Next(1)
		assert.GreaterOrEqual(t, d, 160*time.Millisecond)
		assert.LessOrEqual(t, d, 240*time.Millisecond)
	}
}

func TestDo_ZeroPolicyRunsOnce(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Do(context.Background(), func() error { calls++; return boom }, Policy{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestPublishPolicy(t *testing.T) {
	pol := PublishPolicy(PublishConfig{Attempts: 3, Base: time.Millisecond, Max: 2 * time.Millisecond}, nil)
	assert.Equal(t, 3, pol.Attempts)
	assert.True(t, pol.Retryable(errors.New("broker down")))
	assert.False(t, pol.Retryable(context.Canceled))

	calls := 0
	err := Do(context.Background(), func() error { calls++; return errors.New("broker down") }, pol)
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	}, Policy{Name: "test_ok", Attempts: 5, Backoff: zeroBackoff{}})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_Exhausts(t *testing.T) {
	calls := 0
	var exhausted error
	boom := errors.New("boom")
	err := Do(context.Background(), func() error {
		calls++
		return boom
	}, Policy{
		Name:      "test_exhaust",
		Attempts:  3,
		Backoff:   zeroBackoff{},
		OnExhaust: func(err error) { exhausted = err },
	})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, exhausted, boom)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableStopsEarly(t *testing.T) {
	calls := 0
	fatal := errors.New("fatal")
	err := Do(context.Background(), func() error {
		calls++
		return fatal
	}, Policy{
		Name:      "test_fatal",
		Attempts:  5,
		Backoff:   zeroBackoff{},
		Retryable: func(error) bool { return false },
	})
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, func() error { return errors.New("boom") },
		Policy{Name: "test_cancel", Attempts: 3, Backoff: ExpoJitter{Base: time.Second}})
	assert.ErrorIs(t, err, context.Canceled)
}
