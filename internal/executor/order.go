package executor

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/input"
)

// validSides and validOrderTypes are the order parameters the terminal's
// entry row accepts.
var (
	validSides      = map[string]bool{"BUY": true, "SELL": true}
	validOrderTypes = map[string]bool{"MKT": true, "LMT": true}
)

func orderActions() []Definition {
	return []Definition{
		{
			Name:    "create_order",
			Kind:    schemas.KindOrder,
			Summary: "Create an order row in the entry panel without transmitting it",
			ParamHints: map[string]string{
				"symbol":      "instrument symbol, e.g. AAPL",
				"side":        "BUY or SELL",
				"quantity":    "number of shares/contracts",
				"order_type":  "MKT or LMT",
				"limit_price": "limit price, required for LMT",
			},
			Validate: validateCreateOrder,
			Run:      runCreateOrder,
			Post:     postCreateOrder,
		},
		{
			Name:      "transmit_order",
			Kind:      schemas.KindOrder,
			Transmits: true,
			Summary:   "Transmit the selected order to the market",
			ParamHints: map[string]string{
				"confirm": "must be true when confirm_orders policy is set",
			},
			Run:  runTransmitOrder,
			Post: postTransmitOrder,
		},
		{
			Name:    "cancel_order",
			Kind:    schemas.KindOrder,
			Summary: "Cancel the selected order, or every working order with all=true",
			ParamHints: map[string]string{
				"all": "cancel every working order instead of the selected one",
			},
			Run:  runCancelOrder,
			Post: postCancelOrder,
		},
	}
}

func validateCreateOrder(p schemas.Params) error {
	symbol := strings.ToUpper(p.String("symbol", ""))
	if symbol == "" {
		return schemas.Errorf(schemas.ClassValidationError, schemas.PhaseValidation,
			"create_order requires a symbol")
	}
	side := strings.ToUpper(p.String("side", ""))
	if !validSides[side] {
		return schemas.Errorf(schemas.ClassValidationError, schemas.PhaseValidation,
			"side must be BUY or SELL, got %q", p.String("side", ""))
	}
	if !p.Has("quantity") || p.Int("quantity", 0) <= 0 {
		return schemas.Errorf(schemas.ClassValidationError, schemas.PhaseValidation,
			"quantity must be a positive integer")
	}
	orderType := strings.ToUpper(p.String("order_type", "MKT"))
	if !validOrderTypes[orderType] {
		return schemas.Errorf(schemas.ClassValidationError, schemas.PhaseValidation,
			"order_type must be MKT or LMT, got %q", p.String("order_type", ""))
	}
	if orderType == "LMT" && p.Float("limit_price", 0) <= 0 {
		return schemas.Errorf(schemas.ClassValidationError, schemas.PhaseValidation,
			"LMT orders require a positive limit_price")
	}
	return nil
}

func runCreateOrder(ctx context.Context, x *Exec, p schemas.Params) (string, any, error) {
	symbol := strings.ToUpper(p.String("symbol", ""))
	side := strings.ToUpper(p.String("side", ""))
	quantity := p.Int("quantity", 0)
	orderType := strings.ToUpper(p.String("order_type", "MKT"))

	if err := focusSymbol(ctx, x, symbol); err != nil {
		return "", nil, err
	}

	sideHotkey := input.ActionBuy
	if side == "SELL" {
		sideHotkey = input.ActionSell
	}
	if err := x.Hotkeys.Execute(ctx, sideHotkey); err != nil {
		return "", nil, err
	}
	if err := x.Settle(ctx); err != nil {
		return "", nil, err
	}

	// From here on a partially filled entry row exists; discard it if any
	// later step fails so the next action starts from a clean panel.
	x.Cleanup(func(cctx context.Context) {
		if err := x.Input.Press(cctx, "escape"); err != nil {
			x.Log.Warn("Failed to discard partial order row")
		}
	})

	region := x.SearchRegion("order_entry")
	if err := setField(ctx, x, "Quantity", fmt.Sprint(quantity), region); err != nil {
		return "", nil, err
	}
	if orderType == "LMT" {
		if err := setField(ctx, x, "Lmt Price", p.String("limit_price", ""), region); err != nil {
			return "", nil, err
		}
	}

	message := fmt.Sprintf("order row created: %s %d %s %s", side, quantity, symbol, orderType)
	data := map[string]any{
		"symbol":     symbol,
		"side":       side,
		"quantity":   quantity,
		"order_type": orderType,
	}
	if orderType == "LMT" {
		data["limit_price"] = p.Float("limit_price", 0)
	}
	return message, data, nil
}

// postCreateOrder confirms the entry row exists by resolving its transmit
// control. A row that never appeared means the keystrokes landed somewhere
// else entirely.
func postCreateOrder(ctx context.Context, x *Exec, _ schemas.Params) error {
	_, err := x.Resolver.ResolveWithRetry(ctx, schemas.ElementSpec{
		TextPattern: "Transmit",
		Region:      x.SearchRegion("order_entry"),
		Strategy:    schemas.StrategyHybrid,
	})
	return err
}

func runTransmitOrder(ctx context.Context, x *Exec, _ schemas.Params) (string, any, error) {
	if err := x.Window.Activate(); err != nil {
		return "", nil, err
	}
	if err := x.Hotkeys.Execute(ctx, input.ActionTransmit); err != nil {
		return "", nil, err
	}
	if err := x.Settle(ctx); err != nil {
		return "", nil, err
	}
	return "order transmitted", nil, nil
}

// postTransmitOrder waits for the terminal's status column to acknowledge the
// order. Absence within the bounded wait is NoConfirmation, not a crash.
func postTransmitOrder(ctx context.Context, x *Exec, _ schemas.Params) error {
	_, err := x.Resolver.ResolveWithRetry(ctx, schemas.ElementSpec{
		TextPattern: "(Transmitted|Submitted|PreSubmitted|Filled)",
		Regex:       true,
		Region:      x.SearchRegion("order_status"),
		Strategy:    schemas.StrategyOCR,
	})
	return err
}

func runCancelOrder(ctx context.Context, x *Exec, p schemas.Params) (string, any, error) {
	if err := x.Window.Activate(); err != nil {
		return "", nil, err
	}
	hotkey := input.ActionCancel
	message := "cancel requested for selected order"
	if p.Bool("all", false) {
		hotkey = input.ActionCancelAll
		message = "cancel requested for all working orders"
	}
	if err := x.Hotkeys.Execute(ctx, hotkey); err != nil {
		return "", nil, err
	}
	if err := x.Settle(ctx); err != nil {
		return "", nil, err
	}
	return message, nil, nil
}

func postCancelOrder(ctx context.Context, x *Exec, _ schemas.Params) error {
	_, err := x.Resolver.ResolveWithRetry(ctx, schemas.ElementSpec{
		TextPattern: "Cancell?ed",
		Regex:       true,
		Region:      x.SearchRegion("order_status"),
		Strategy:    schemas.StrategyOCR,
	})
	return err
}

// setField locates a labeled entry field, clicks into it, and replaces its
// contents. The editable cell sits immediately right of its label, so the
// click target is offset by one label width.
func setField(ctx context.Context, x *Exec, label, value string, region *image.Rectangle) error {
	el, err := x.Resolver.ResolveWithRetry(ctx, schemas.ElementSpec{
		TextPattern: label,
		Region:      region,
		Strategy:    schemas.StrategyHybrid,
	})
	if err != nil {
		return err
	}

	target := el.Center()
	target.X += el.Rect.Dx()
	if err := x.Input.Click(ctx, target.X, target.Y); err != nil {
		return err
	}
	if err := x.Input.KeyChord(ctx, []string{"ctrl"}, "a"); err != nil {
		return err
	}
	if err := x.Input.TypeText(ctx, value); err != nil {
		return err
	}
	if err := x.Input.Press(ctx, "tab"); err != nil {
		return err
	}
	return x.Settle(ctx)
}
