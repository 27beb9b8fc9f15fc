package checks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"scorecard/internal/source"
	"scorecard/internal/textread"

	"github.com/stretchr/testify/require"
)

type mockCheck struct {
	id           string
	fail         bool
	err          error
	configurable bool
	opts         map[string]string
}

func (m *mockCheck) ID() string          { return m.id }
func (m *mockCheck) Title() string       { return "Mock Check" }
func (m *mockCheck) Description() string { return "A mock check" }
func (m *mockCheck) Evaluate(ctx context.Context, t Target) (Result, error) {
	if m.err != nil {
		return Result{}, m.err
	}
	if m.fail {
		return FailResult(t, m.id, "failed"), nil
	}
	return PassResult(t, m.id, "ok"), nil
}

type configurableMock struct {
	mockCheck
}

func (m *configurableMock) Options() []Option {
	return []Option{{Name: "mock.option", Description: "A mock option"}}
}

func (m *configurableMock) Configure(opts map[string]string) error {
	m.opts = opts
	return nil
}

func localTarget(t *testing.T, files map[string]string, mode textread.Mode) Target {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	src, err := source.NewLocal(dir)
	require.NoError(t, err)
	return Target{Source: src, Decoding: mode}
}
