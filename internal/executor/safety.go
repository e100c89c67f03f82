package executor

import (
	"fmt"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/config"
)

// Verdict is the safety gate's answer for one request.
type Verdict struct {
	Allowed bool
	Reason  string
}

func allow() Verdict             { return Verdict{Allowed: true} }
func deny(reason string) Verdict { return Verdict{Allowed: false, Reason: reason} }

// Gate evaluates risk policy against a SafetyConfig snapshot. It is a pure
// function of its inputs: no screen, no input, no clock. The executor runs it
// strictly before any side-effecting call.
type Gate struct {
	cfg config.SafetyConfig
}

// NewGate builds a gate over the given policy snapshot.
func NewGate(cfg config.SafetyConfig) Gate {
	return Gate{cfg: cfg}
}

// Check evaluates one request. Only order-affecting actions are examined;
// read and navigation actions always pass. paperMode reports whether the
// attached terminal session is a paper-trading session.
func (g Gate) Check(def Definition, req schemas.ActionRequest, paperMode bool) Verdict {
	if def.Kind != schemas.KindOrder {
		return allow()
	}

	if g.cfg.PaperTradingOnly && !paperMode {
		return deny("live trading session rejected: paper_trading_only is set")
	}

	if req.Params.Has("quantity") {
		qty := req.Params.Int("quantity", 0)
		if qty <= 0 {
			return deny("order quantity must be positive")
		}
		if g.cfg.MaxOrderQuantity > 0 && qty > g.cfg.MaxOrderQuantity {
			return deny(fmt.Sprintf("quantity %d exceeds maximum %d", qty, g.cfg.MaxOrderQuantity))
		}
		if price := req.Params.Float("limit_price", 0); price > 0 && g.cfg.MaxOrderValue > 0 {
			if notional := float64(qty) * price; notional > g.cfg.MaxOrderValue {
				return deny(fmt.Sprintf("notional value %.2f exceeds maximum %.2f",
					notional, g.cfg.MaxOrderValue))
			}
		}
	}

	if def.Transmits && g.cfg.ConfirmOrders && !req.Params.Bool("confirm", false) {
		return deny("transmission requires confirm=true while confirm_orders is set")
	}

	return allow()
}
