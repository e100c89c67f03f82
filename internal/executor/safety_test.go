package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/config"
)

func orderDef() Definition {
	return Definition{Name: "create_order", Kind: schemas.KindOrder}
}

func transmitDef() Definition {
	return Definition{Name: "transmit_order", Kind: schemas.KindOrder, Transmits: true}
}

func orderReq(params schemas.Params) schemas.ActionRequest {
	return schemas.ActionRequest{Name: "create_order", Params: params}
}

func TestGateIgnoresNonOrderActions(t *testing.T) {
	g := NewGate(config.SafetyConfig{PaperTradingOnly: true, MaxOrderQuantity: 1})

	for _, kind := range []schemas.ActionKind{schemas.KindRead, schemas.KindNavigate} {
		v := g.Check(Definition{Name: "x", Kind: kind}, schemas.ActionRequest{
			Params: schemas.Params{"quantity": 999999},
		}, false)
		assert.True(t, v.Allowed, "kind %s must bypass the gate", kind)
	}
}

func TestGatePaperTradingOnly(t *testing.T) {
	g := NewGate(config.SafetyConfig{PaperTradingOnly: true})

	v := g.Check(orderDef(), orderReq(nil), false)
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reason, "paper_trading_only")

	assert.True(t, g.Check(orderDef(), orderReq(nil), true).Allowed)

	// Policy off: live sessions pass.
	relaxed := NewGate(config.SafetyConfig{})
	assert.True(t, relaxed.Check(orderDef(), orderReq(nil), false).Allowed)
}

func TestGateQuantityLimit(t *testing.T) {
	g := NewGate(config.SafetyConfig{MaxOrderQuantity: 1000})

	assert.True(t, g.Check(orderDef(), orderReq(schemas.Params{"quantity": 1000}), true).Allowed)

	v := g.Check(orderDef(), orderReq(schemas.Params{"quantity": 1001}), true)
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reason, "exceeds maximum")

	v = g.Check(orderDef(), orderReq(schemas.Params{"quantity": -5}), true)
	assert.False(t, v.Allowed)
}

func TestGateNotionalLimit(t *testing.T) {
	g := NewGate(config.SafetyConfig{MaxOrderValue: 100000})

	ok := schemas.Params{"quantity": 100, "limit_price": 150.0} // 15k notional
	assert.True(t, g.Check(orderDef(), orderReq(ok), true).Allowed)

	big := schemas.Params{"quantity": 1000, "limit_price": 150.0} // 150k notional
	v := g.Check(orderDef(), orderReq(big), true)
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reason, "notional")

	// Market orders carry no price; the notional check cannot apply.
	mkt := schemas.Params{"quantity": 1000}
	assert.True(t, g.Check(orderDef(), orderReq(mkt), true).Allowed)
}

func TestGateTransmitConfirmation(t *testing.T) {
	g := NewGate(config.SafetyConfig{ConfirmOrders: true})

	v := g.Check(transmitDef(), schemas.ActionRequest{}, true)
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reason, "confirm")

	assert.True(t, g.Check(transmitDef(), schemas.ActionRequest{
		Params: schemas.Params{"confirm": true},
	}, true).Allowed)

	// Non-transmitting order actions need no confirmation flag.
	assert.True(t, g.Check(orderDef(), orderReq(nil), true).Allowed)
}

func TestGateJSONNumberCoercion(t *testing.T) {
	g := NewGate(config.SafetyConfig{MaxOrderQuantity: 1000})

	// JSON boundaries deliver every number as float64.
	v := g.Check(orderDef(), orderReq(schemas.Params{"quantity": float64(5000)}), true)
	assert.False(t, v.Allowed)
}
