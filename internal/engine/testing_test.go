package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"scorecard/internal/checks"
	"scorecard/internal/config"
)

// stubCheck is registered once per process under a test-only ID.
type stubCheck struct {
	id   string
	eval func(ctx context.Context, t checks.Target) (checks.Result, error)
}

func (c *stubCheck) ID() string          { return c.id }
func (c *stubCheck) Title() string       { return c.id }
func (c *stubCheck) Description() string { return "test check " + c.id }
func (c *stubCheck) Evaluate(ctx context.Context, t checks.Target) (checks.Result, error) {
	return c.eval(ctx, t)
}

func init() {
	checks.Register(&stubCheck{id: "stub-pass", eval: func(_ context.Context, t checks.Target) (checks.Result, error) {
		return checks.PassResult(t, "stub-pass", "all good"), nil
	}})
	checks.Register(&stubCheck{id: "stub-fail", eval: func(_ context.Context, t checks.Target) (checks.Result, error) {
		return checks.FailResult(t, "stub-fail", "not good"), nil
	}})
	checks.Register(&stubCheck{id: "stub-broken", eval: func(context.Context, checks.Target) (checks.Result, error) {
		return checks.Result{}, errors.New("boom")
	}})
	checks.Register(&stubCheck{id: "stub-bare", eval: func(context.Context, checks.Target) (checks.Result, error) {
		return checks.Result{Status: checks.StatusPass, Message: "bare"}, nil
	}})
	// stub-delay sleeps for the number of milliseconds in the target's "delay" file.
	checks.Register(&stubCheck{id: "stub-delay", eval: func(ctx context.Context, t checks.Target) (checks.Result, error) {
		text, err := t.ReadText(ctx, "delay")
		if err != nil {
			return checks.Result{}, err
		}
		ms, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return checks.Result{}, err
		}
		select {
		case <-time.After(time.Duration(ms) * time.Millisecond):
		case <-ctx.Done():
			return checks.Result{}, ctx.Err()
		}
		return checks.PassResult(t, "stub-delay", "waited "+text), nil
	}})
}

func newRepoDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func newConfig(t *testing.T, selector string, repos ...string) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Checks.Selector = selector
	cfg.Target.Repos = repos
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return cfg
}
