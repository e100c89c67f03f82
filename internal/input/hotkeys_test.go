package input

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/config"
)

func setupHotkeys(t *testing.T, overrides map[string]config.HotkeyOverride) (*mockDriver, *Hotkeys) {
	t.Helper()
	f := setupSynth(t, false)
	hk, err := NewHotkeys(f.synth, overrides, zap.NewNop())
	require.NoError(t, err)
	return f.drv, hk
}

func TestDefaultBindingsAreValid(t *testing.T) {
	_, hk := setupHotkeys(t, nil)

	b, ok := hk.Binding(ActionBuy)
	require.True(t, ok)
	assert.Equal(t, "alt+b", b.Chord())

	b, ok = hk.Binding(ActionRefresh)
	require.True(t, ok)
	assert.Equal(t, "f5", b.Chord())

	assert.Len(t, hk.IDs(), 9)
}

func TestExecuteChordAndPlainKey(t *testing.T) {
	drv, hk := setupHotkeys(t, nil)

	require.NoError(t, hk.Execute(context.Background(), ActionTransmit))
	assert.Equal(t, []string{"toggle alt down", "tap t", "toggle alt up"}, drv.ops)

	drv.ops = nil
	require.NoError(t, hk.Execute(context.Background(), ActionRefresh))
	assert.Equal(t, []string{"tap f5"}, drv.ops)
}

func TestExecuteUnknownAction(t *testing.T) {
	_, hk := setupHotkeys(t, nil)
	err := hk.Execute(context.Background(), "launch_missiles")
	assert.ErrorContains(t, err, "no hotkey bound")
}

func TestOverrideReplacesDefault(t *testing.T) {
	drv, hk := setupHotkeys(t, map[string]config.HotkeyOverride{
		ActionBuy: {Modifiers: []string{"ctrl", "shift"}, Key: "b"},
	})

	require.NoError(t, hk.Execute(context.Background(), ActionBuy))
	assert.Equal(t, []string{
		"toggle ctrl down",
		"toggle shift down",
		"tap b",
		"toggle shift up",
		"toggle ctrl up",
	}, drv.ops)
}

func TestDuplicateChordRejected(t *testing.T) {
	f := setupSynth(t, false)
	_, err := NewHotkeys(f.synth, map[string]config.HotkeyOverride{
		// Collides with the default sell binding.
		ActionBuy: {Modifiers: []string{"alt"}, Key: "s"},
	}, zap.NewNop())
	require.Error(t, err)
	assert.ErrorContains(t, err, "bound to both")
}

func TestEmptyKeyRejected(t *testing.T) {
	f := setupSynth(t, false)
	_, err := NewHotkeys(f.synth, map[string]config.HotkeyOverride{
		"custom": {Modifiers: []string{"alt"}},
	}, zap.NewNop())
	assert.ErrorContains(t, err, "has no key")
}
