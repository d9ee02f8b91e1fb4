package cycleguard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuard_DetectsCircularReference(t *testing.T) {
	g := New(0)

	m := map[string]any{}
	m["self"] = m

	leave, err := g.Enter(m)
	require.NoError(t, err)
	defer leave()

	_, err = g.Enter(m["self"])
	require.ErrorIs(t, err, ErrCircularReference)
}

func TestGuard_LeaveAllowsReentry(t *testing.T) {
	g := New(0)

	m := map[string]any{"a": 1}

	leave, err := g.Enter(m)
	require.NoError(t, err)
	leave()

	_, err = g.Enter(m)
	require.NoError(t, err)
}

func TestGuard_RecursionLimit(t *testing.T) {
	g := New(2)

	leave1, err := g.Enter([]any{1})
	require.NoError(t, err)
	defer leave1()

	leave2, err := g.Enter([]any{2})
	require.NoError(t, err)
	defer leave2()

	_, err = g.Enter([]any{3})
	require.ErrorIs(t, err, ErrRecursionLimitExceeded)
}

func TestGuard_ScalarsNotTracked(t *testing.T) {
	g := New(0)

	leave, err := g.Enter(42)
	require.NoError(t, err)
	leave()

	_, err = g.Enter(42)
	require.NoError(t, err)
}

func TestGuard_Reset(t *testing.T) {
	g := New(1)
	leave, err := g.Enter([]any{1})
	require.NoError(t, err)
	defer leave()

	g.Reset()
	require.Equal(t, 0, g.Depth())
}
