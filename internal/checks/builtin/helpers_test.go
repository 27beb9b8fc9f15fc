package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"scorecard/internal/checks"
	"scorecard/internal/source"
	"scorecard/internal/textread"

	"github.com/stretchr/testify/require"
)

func newTarget(t *testing.T, files map[string]string) checks.Target {
	t.Helper()
	return newTargetWithMode(t, files, textread.Lenient)
}

func newTargetWithMode(t *testing.T, files map[string]string, mode textread.Mode) checks.Target {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	src, err := source.NewLocal(dir)
	require.NoError(t, err)
	return checks.Target{Source: src, Decoding: mode}
}

func mkdir(t *testing.T, target checks.Target, rel string) {
	t.Helper()
	local := target.Source.(*source.Local)
	require.NoError(t, os.MkdirAll(filepath.Join(local.Root(), filepath.FromSlash(rel)), 0o755))
}

func evaluate(t *testing.T, c checks.Check, target checks.Target) checks.Result {
	t.Helper()
	res, err := c.Evaluate(context.Background(), target)
	require.NoError(t, err)
	return res
}
