package schemas

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementSpecKeyIdentity(t *testing.T) {
	region := image.Rect(10, 20, 110, 60)
	a := ElementSpec{Name: "Buy", Strategy: StrategyUIA, Region: &region}
	b := ElementSpec{Name: "Buy", Strategy: StrategyUIA, Region: &region}
	c := ElementSpec{Name: "Sell", Strategy: StrategyUIA, Region: &region}

	assert.Equal(t, a.Key(), b.Key(), "identical specs must share a cache key")
	assert.NotEqual(t, a.Key(), c.Key())

	// Pinning a different strategy changes identity too; a cached OCR hit must
	// never satisfy a UIA-pinned lookup.
	d := a
	d.Strategy = StrategyOCR
	assert.NotEqual(t, a.Key(), d.Key())
}

func TestResolvedElementCenter(t *testing.T) {
	el := ResolvedElement{Rect: image.Rect(100, 200, 140, 220)}
	assert.Equal(t, image.Pt(120, 210), el.Center())
}

func TestAutomationErrorClassification(t *testing.T) {
	cause := fmt.Errorf("chain exhausted after 3 passes")
	err := NewError(ClassElementNotFound, PhaseResolution, cause)

	assert.Equal(t, ClassElementNotFound, ClassOf(err))
	assert.Equal(t, PhaseResolution, PhaseOf(err))
	assert.ErrorIs(t, err, &AutomationError{Class: ClassElementNotFound})
	assert.NotErrorIs(t, err, &AutomationError{Class: ClassTimeout})

	// Wrapping through fmt.Errorf must preserve the classification.
	wrapped := fmt.Errorf("resolving %q: %w", "Buy", err)
	assert.Equal(t, ClassElementNotFound, ClassOf(wrapped))
	assert.True(t, errors.Is(wrapped, err))
}

func TestClassOfUnclassified(t *testing.T) {
	assert.Equal(t, ClassActionFailed, ClassOf(errors.New("boom")))
}

func TestParamsTypedGetters(t *testing.T) {
	// JSON decoding hands every number over as float64; the getters must cope.
	p := Params{
		"symbol":   "AAPL",
		"quantity": float64(100),
		"price":    "150.25",
		"transmit": true,
	}

	assert.Equal(t, "AAPL", p.String("symbol", ""))
	assert.Equal(t, 100, p.Int("quantity", 0))
	assert.InDelta(t, 150.25, p.Float("price", 0), 1e-9)
	assert.True(t, p.Bool("transmit", false))
	assert.Equal(t, 7, p.Int("missing", 7))
	assert.False(t, p.Has("missing"))
}

func TestFailCarriesClassAndPhase(t *testing.T) {
	err := Errorf(ClassSafetyViolation, PhaseSafety, "quantity %d exceeds limit", 5000)
	res := Fail(err)

	require.False(t, res.Success)
	assert.Equal(t, ClassSafetyViolation, res.Error)
	assert.Equal(t, PhaseSafety, res.Phase)
	assert.Contains(t, res.Message, "5000")
}
