package fetcher

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func headers(kv ...string) *http.Response {
	resp := &http.Response{Header: http.Header{}}
	for i := 0; i+1 < len(kv); i += 2 {
		resp.Header.Set(kv[i], kv[i+1])
	}
	return resp
}

func TestRequestBudget_AcquireDecrements(t *testing.T) {
	b := NewRequestBudget()
	require.NoError(t, b.Acquire(context.Background(), 1))
	require.NoError(t, b.Acquire(context.Background(), 2))
	assert.Equal(t, 4997, b.Remaining())
}

func TestRequestBudget_AcquireRejectsNonPositive(t *testing.T) {
	b := NewRequestBudget()
	assert.Error(t, b.Acquire(context.Background(), 0))
}

func TestRequestBudget_ObserveHeaders(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	b := newRequestBudget(fixedClock(now))

	reset := now.Add(10 * time.Minute).Unix()
	b.Observe(headers("X-RateLimit-Remaining", "42", "X-RateLimit-Reset", strconv.FormatInt(reset, 10)))

	assert.Equal(t, 42, b.Remaining())
	assert.Equal(t, time.Unix(reset, 0), b.reset)
}

func TestRequestBudget_ObserveIgnoresGarbage(t *testing.T) {
	b := NewRequestBudget()
	b.Observe(headers("X-RateLimit-Remaining", "lots"))
	b.Observe(nil)
	assert.Equal(t, 5000, b.Remaining())
}

func TestRequestBudget_ExhaustedBlocksUntilContextDone(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	b := newRequestBudget(fixedClock(now))
	b.Observe(headers("X-RateLimit-Remaining", "0", "X-RateLimit-Reset", strconv.FormatInt(now.Add(time.Hour).Unix(), 10)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := b.Acquire(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestBudget_ObserveWakesWaiter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	b := newRequestBudget(fixedClock(now))
	b.Observe(headers("X-RateLimit-Remaining", "0", "X-RateLimit-Reset", strconv.FormatInt(now.Add(time.Hour).Unix(), 10)))

	done := make(chan error, 1)
	go func() {
		done <- b.Acquire(context.Background(), 1)
	}()

	time.Sleep(20 * time.Millisecond)
	b.Observe(headers("X-RateLimit-Remaining", "10"))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not released by Observe")
	}
	assert.Equal(t, 9, b.Remaining())
}

func TestRequestBudget_PastResetLetsRequestThrough(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	b := newRequestBudget(fixedClock(now))
	b.Observe(headers("X-RateLimit-Remaining", "0", "X-RateLimit-Reset", strconv.FormatInt(now.Add(-time.Second).Unix(), 10)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, b.Acquire(ctx, 1))
}

func TestRequestBudget_RetryAfterCooldown(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	b := newRequestBudget(fixedClock(now))
	b.Observe(headers("Retry-After", "60"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.Acquire(ctx, 1), context.DeadlineExceeded)
}
