package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

func noopRun(context.Context, *Exec, schemas.Params) (string, any, error) {
	return "", nil, nil
}

func TestRegistryRejectsDuplicatesAndIncomplete(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register(Definition{Name: "a", Kind: schemas.KindRead, Run: noopRun}))

	err := reg.Register(Definition{Name: "a", Kind: schemas.KindRead, Run: noopRun})
	assert.ErrorContains(t, err, "registered twice")

	assert.ErrorContains(t, reg.Register(Definition{Kind: schemas.KindRead, Run: noopRun}), "no name")
	assert.ErrorContains(t, reg.Register(Definition{Name: "b"}), "no run function")
}

func TestRegistryListIsSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, reg.Register(Definition{Name: name, Kind: schemas.KindRead, Run: noopRun}))
	}

	var names []string
	for _, def := range reg.List() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestDefaultRegistryCatalog(t *testing.T) {
	reg := DefaultRegistry()

	for _, name := range []string{
		"create_order", "transmit_order", "cancel_order",
		"search_symbol", "open_window", "refresh",
		"open_chart", "change_timeframe",
		"get_portfolio", "get_position",
		"screenshot", "read_screen",
	} {
		_, ok := reg.Get(name)
		assert.True(t, ok, "catalog must include %s", name)
	}

	// Only transmit carries the transmission flag.
	for _, def := range reg.List() {
		if def.Name == "transmit_order" {
			assert.True(t, def.Transmits)
		} else {
			assert.False(t, def.Transmits, "%s must not be flagged as transmitting", def.Name)
		}
	}
}
