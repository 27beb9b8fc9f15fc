package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRegistry(t *testing.T) {
	t.Helper()
	mu.Lock()
	saved := registry
	registry = make(map[string]Check)
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		registry = saved
		mu.Unlock()
	})
}

func TestRegistry(t *testing.T) {
	resetRegistry(t)

	Register(&mockCheck{id: "beta"})
	Register(&mockCheck{id: "alpha"})

	all := List()
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].ID())
	assert.Equal(t, "beta", all[1].ID())

	selected, err := Resolve("beta, alpha,beta")
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "beta", selected[0].ID())
	assert.Equal(t, "alpha", selected[1].ID())

	for _, sel := range []string{"", "all", " ALL "} {
		selected, err = Resolve(sel)
		require.NoError(t, err)
		assert.Len(t, selected, 2, "selector %q", sel)
	}

	_, err = Resolve("unknown")
	assert.ErrorContains(t, err, "check not found: unknown")

	_, err = Resolve(" , ")
	assert.Error(t, err)

	c, ok := Lookup("alpha")
	require.True(t, ok)
	_, isWrapped := c.(*AllowListWrapper)
	assert.True(t, isWrapped)
}

func TestRegister_PanicsOnDuplicate(t *testing.T) {
	resetRegistry(t)
	Register(&mockCheck{id: "dup"})
	assert.Panics(t, func() { Register(&mockCheck{id: "dup"}) })
}
