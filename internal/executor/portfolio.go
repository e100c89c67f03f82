package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/input"
	"github.com/xkilldash9x/deskpilot/internal/recog"
)

// portfolioColumns is the column layout of the terminal's portfolio table,
// left to right. The OCR table parse keys each row's cells by these names.
var portfolioColumns = []string{
	"symbol", "position", "market_price", "market_value", "avg_price", "unrealized_pnl",
}

func portfolioActions() []Definition {
	return []Definition{
		{
			Name:    "get_portfolio",
			Kind:    schemas.KindRead,
			Summary: "Read every position row from the portfolio table",
			Run:     runGetPortfolio,
		},
		{
			Name:    "get_position",
			Kind:    schemas.KindRead,
			Summary: "Read the portfolio row for one symbol",
			ParamHints: map[string]string{
				"symbol": "instrument symbol to look up",
			},
			Validate: validateSymbolParam,
			Run:      runGetPosition,
		},
	}
}

// readPortfolioRows opens the portfolio panel and parses its table from a
// fresh capture. Rows that OCR mangled into the wrong cell count are dropped
// rather than misaligned.
func readPortfolioRows(ctx context.Context, x *Exec) ([]map[string]string, error) {
	if err := x.Window.Activate(); err != nil {
		return nil, err
	}
	if err := x.Hotkeys.Execute(ctx, input.ActionPortfolio); err != nil {
		return nil, err
	}
	if err := x.Settle(ctx); err != nil {
		return nil, err
	}

	img, err := x.Screen.Capture(ctx, x.SearchRegion("portfolio_table"))
	if err != nil {
		return nil, err
	}
	spans, err := x.Recog.RecognizeText(ctx, img)
	if err != nil {
		return nil, err
	}

	rows := recog.Table(spans, portfolioColumns)

	// The header row parses like any other; strip it when present.
	out := rows[:0]
	for _, row := range rows {
		if strings.EqualFold(row["symbol"], "symbol") {
			continue
		}
		row["symbol"] = recog.NormalizeSymbol(row["symbol"])
		out = append(out, row)
	}
	return out, nil
}

// numericRow copies a table row, converting the cells that read as
// quantities or prices into numbers. Cells OCR mangled stay as raw text.
func numericRow(row map[string]string) map[string]any {
	out := make(map[string]any, len(row))
	for col, cell := range row {
		if col == "symbol" {
			out[col] = cell
			continue
		}
		if v, err := recog.ParsePrice(cell); err == nil {
			out[col] = v
			continue
		}
		out[col] = cell
	}
	return out
}

func runGetPortfolio(ctx context.Context, x *Exec, _ schemas.Params) (string, any, error) {
	rows, err := readPortfolioRows(ctx, x)
	if err != nil {
		return "", nil, err
	}
	positions := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, numericRow(row))
	}
	return fmt.Sprintf("read %d portfolio rows", len(rows)), map[string]any{"positions": positions}, nil
}

func runGetPosition(ctx context.Context, x *Exec, p schemas.Params) (string, any, error) {
	symbol := recog.NormalizeSymbol(p.String("symbol", ""))

	rows, err := readPortfolioRows(ctx, x)
	if err != nil {
		return "", nil, err
	}
	for _, row := range rows {
		if row["symbol"] == symbol {
			return fmt.Sprintf("position found for %s", symbol), map[string]any{"position": numericRow(row)}, nil
		}
	}
	return "", nil, schemas.Errorf(schemas.ClassElementNotFound, schemas.PhaseExecution,
		"no portfolio row for %s", symbol)
}
