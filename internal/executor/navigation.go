package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/input"
)

// openableWindows maps the open_window parameter to the hotkey that raises
// the panel and the text that proves it is visible.
var openableWindows = map[string]struct {
	hotkey  string
	evident string
}{
	"portfolio": {hotkey: input.ActionPortfolio, evident: "Portfolio"},
	"orders":    {hotkey: input.ActionOrders, evident: "Orders"},
}

func navigationActions() []Definition {
	return []Definition{
		{
			Name:    "search_symbol",
			Kind:    schemas.KindNavigate,
			Summary: "Focus the terminal on an instrument symbol",
			ParamHints: map[string]string{
				"symbol": "instrument symbol to search for",
			},
			Validate: validateSymbolParam,
			Run:      runSearchSymbol,
		},
		{
			Name:    "open_window",
			Kind:    schemas.KindNavigate,
			Summary: "Open a named terminal panel",
			ParamHints: map[string]string{
				"window": "portfolio or orders",
			},
			Validate: validateOpenWindow,
			Run:      runOpenWindow,
			Post:     postOpenWindow,
		},
		{
			Name:    "refresh",
			Kind:    schemas.KindNavigate,
			Summary: "Refresh the terminal's market data",
			Run:     runRefresh,
		},
	}
}

func validateSymbolParam(p schemas.Params) error {
	symbol := strings.TrimSpace(p.String("symbol", ""))
	if symbol == "" {
		return schemas.Errorf(schemas.ClassValidationError, schemas.PhaseValidation,
			"a symbol is required")
	}
	if len(symbol) > 12 {
		return schemas.Errorf(schemas.ClassValidationError, schemas.PhaseValidation,
			"symbol %q is implausibly long", symbol)
	}
	return nil
}

func runSearchSymbol(ctx context.Context, x *Exec, p schemas.Params) (string, any, error) {
	symbol := strings.ToUpper(strings.TrimSpace(p.String("symbol", "")))
	if err := focusSymbol(ctx, x, symbol); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("terminal focused on %s", symbol), map[string]any{"symbol": symbol}, nil
}

// focusSymbol drives the terminal's symbol search and verifies the symbol
// actually appeared. An unknown symbol exhausts the resolution chain, which
// is exactly the ElementNotFound the caller should see.
func focusSymbol(ctx context.Context, x *Exec, symbol string) error {
	if err := x.Window.Activate(); err != nil {
		return err
	}
	if err := x.Hotkeys.Execute(ctx, input.ActionSearch); err != nil {
		return err
	}
	if err := x.Settle(ctx); err != nil {
		return err
	}
	if err := x.Input.TypeText(ctx, symbol); err != nil {
		return err
	}
	if err := x.Input.Press(ctx, "enter"); err != nil {
		return err
	}
	if err := x.Settle(ctx); err != nil {
		return err
	}

	_, err := x.Resolver.ResolveWithRetry(ctx, schemas.ElementSpec{
		TextPattern: symbol,
		Region:      x.SearchRegion("quote_panel"),
		Strategy:    schemas.StrategyHybrid,
	})
	return err
}

func validateOpenWindow(p schemas.Params) error {
	name := strings.ToLower(p.String("window", ""))
	if _, ok := openableWindows[name]; !ok {
		return schemas.Errorf(schemas.ClassValidationError, schemas.PhaseValidation,
			"unknown window %q", p.String("window", ""))
	}
	return nil
}

func runOpenWindow(ctx context.Context, x *Exec, p schemas.Params) (string, any, error) {
	name := strings.ToLower(p.String("window", ""))
	target := openableWindows[name]

	if err := x.Window.Activate(); err != nil {
		return "", nil, err
	}
	if err := x.Hotkeys.Execute(ctx, target.hotkey); err != nil {
		return "", nil, err
	}
	if err := x.Settle(ctx); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s window opened", name), nil, nil
}

func postOpenWindow(ctx context.Context, x *Exec, p schemas.Params) error {
	target := openableWindows[strings.ToLower(p.String("window", ""))]
	_, err := x.Resolver.ResolveWithRetry(ctx, schemas.ElementSpec{
		TextPattern: target.evident,
		Strategy:    schemas.StrategyHybrid,
	})
	return err
}

func runRefresh(ctx context.Context, x *Exec, _ schemas.Params) (string, any, error) {
	if err := x.Window.Activate(); err != nil {
		return "", nil, err
	}
	if err := x.Hotkeys.Execute(ctx, input.ActionRefresh); err != nil {
		return "", nil, err
	}
	if err := x.Settle(ctx); err != nil {
		return "", nil, err
	}
	return "refresh requested", nil, nil
}
