package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

func TestParseParamsCoercion(t *testing.T) {
	params, err := parseParams([]string{
		"symbol=AAPL",
		"quantity=100",
		"limit_price=150.25",
		"confirm=true",
		"note=contains=equals",
	})
	require.NoError(t, err)

	assert.Equal(t, schemas.Params{
		"symbol":      "AAPL",
		"quantity":    100,
		"limit_price": 150.25,
		"confirm":     true,
		"note":        "contains=equals",
	}, params)
}

func TestParseParamsErrors(t *testing.T) {
	_, err := parseParams([]string{"no-equals"})
	assert.ErrorContains(t, err, "malformed parameter")

	_, err = parseParams([]string{"=value"})
	assert.ErrorContains(t, err, "malformed parameter")

	params, err := parseParams(nil)
	require.NoError(t, err)
	assert.Nil(t, params)
}
