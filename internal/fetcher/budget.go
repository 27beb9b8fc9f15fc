package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RequestBudget tracks the GitHub rate limit reported in response headers and
// holds callers back once it is spent.
type RequestBudget struct {
	mu        sync.Mutex
	remaining int
	reset     time.Time
	cooldown  time.Time
	now       func() time.Time
	changed   chan struct{}
}

func NewRequestBudget() *RequestBudget {
	return newRequestBudget(time.Now)
}

func newRequestBudget(now func() time.Time) *RequestBudget {
	return &RequestBudget{
		remaining: 5000,
		reset:     now().Add(time.Hour),
		now:       now,
		changed:   make(chan struct{}),
	}
}

func (b *RequestBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

// Acquire reserves n requests. It blocks while a Retry-After cooldown is in
// effect or until the window resets when fewer than n requests remain. Once
// the reset time has passed without a fresh observation the request is let
// through so its response can refresh the counters.
func (b *RequestBudget) Acquire(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("acquire: n must be > 0 (got %d)", n)
	}
	for {
		b.mu.Lock()
		now := b.now()
		var wait time.Duration
		switch {
		case now.Before(b.cooldown):
			wait = b.cooldown.Sub(now)
		case b.remaining >= n:
			b.remaining -= n
			b.mu.Unlock()
			return nil
		case !now.Before(b.reset):
			b.mu.Unlock()
			return nil
		default:
			wait = b.reset.Sub(now)
		}
		changed := b.changed
		b.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-changed:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Observe updates the budget from a GitHub response.
func (b *RequestBudget) Observe(resp *http.Response) {
	if resp == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	updated := false
	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			b.remaining = n
			updated = true
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			b.reset = time.Unix(sec, 0)
			updated = true
		}
	}
	if v := resp.Header.Get("Retry-After"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			b.cooldown = b.now().Add(time.Duration(sec) * time.Second)
			updated = true
		}
	}
	if updated {
		close(b.changed)
		b.changed = make(chan struct{})
	}
}
