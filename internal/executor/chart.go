package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// timeframeLabels maps the API timeframe names to the button captions the
// chart toolbar renders.
var timeframeLabels = map[string]string{
	"1m":  "1 min",
	"5m":  "5 mins",
	"15m": "15 mins",
	"1h":  "1 hour",
	"4h":  "4 hours",
	"1d":  "1 day",
	"1w":  "1 week",
}

func chartActions() []Definition {
	return []Definition{
		{
			Name:    "open_chart",
			Kind:    schemas.KindNavigate,
			Summary: "Open a price chart for a symbol",
			ParamHints: map[string]string{
				"symbol": "instrument symbol to chart",
			},
			Validate: validateSymbolParam,
			Run:      runOpenChart,
		},
		{
			Name:    "change_timeframe",
			Kind:    schemas.KindNavigate,
			Summary: "Switch the active chart's timeframe",
			ParamHints: map[string]string{
				"timeframe": "one of 1m, 5m, 15m, 1h, 4h, 1d, 1w",
			},
			Validate: validateTimeframe,
			Run:      runChangeTimeframe,
		},
	}
}

func runOpenChart(ctx context.Context, x *Exec, p schemas.Params) (string, any, error) {
	symbol := strings.ToUpper(strings.TrimSpace(p.String("symbol", "")))
	if err := focusSymbol(ctx, x, symbol); err != nil {
		return "", nil, err
	}

	button, err := x.Resolver.ResolveWithRetry(ctx, schemas.ElementSpec{
		TextPattern: "Chart",
		Template:    "chart_button.png",
		Strategy:    schemas.StrategyHybrid,
	})
	if err != nil {
		return "", nil, err
	}
	center := button.Center()
	if err := x.Input.Click(ctx, center.X, center.Y); err != nil {
		return "", nil, err
	}
	if err := x.Settle(ctx); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("chart opened for %s", symbol), map[string]any{"symbol": symbol}, nil
}

func validateTimeframe(p schemas.Params) error {
	tf := strings.ToLower(p.String("timeframe", ""))
	if _, ok := timeframeLabels[tf]; !ok {
		return schemas.Errorf(schemas.ClassValidationError, schemas.PhaseValidation,
			"unknown timeframe %q", p.String("timeframe", ""))
	}
	return nil
}

func runChangeTimeframe(ctx context.Context, x *Exec, p schemas.Params) (string, any, error) {
	tf := strings.ToLower(p.String("timeframe", ""))
	label := timeframeLabels[tf]

	if err := x.Window.Activate(); err != nil {
		return "", nil, err
	}
	button, err := x.Resolver.ResolveWithRetry(ctx, schemas.ElementSpec{
		TextPattern: label,
		Region:      x.SearchRegion("chart_toolbar"),
		Strategy:    schemas.StrategyHybrid,
	})
	if err != nil {
		return "", nil, err
	}
	center := button.Center()
	if err := x.Input.Click(ctx, center.X, center.Y); err != nil {
		return "", nil, err
	}
	if err := x.Settle(ctx); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("timeframe switched to %s", label), map[string]any{"timeframe": tf}, nil
}
