package recog

import (
	"sort"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// rowThreshold is the vertical distance in pixels under which two spans are
// considered part of the same table row.
const rowThreshold = 20

// GroupRows clusters text spans into visual table rows. Rows are ordered
// top-to-bottom, cells within a row left-to-right, so repeated captures of an
// unchanged screen always produce the same grouping.
func GroupRows(spans []schemas.TextSpan) [][]schemas.TextSpan {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]schemas.TextSpan, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Rect.Min.Y != sorted[j].Rect.Min.Y {
			return sorted[i].Rect.Min.Y < sorted[j].Rect.Min.Y
		}
		return sorted[i].Rect.Min.X < sorted[j].Rect.Min.X
	})

	var rows [][]schemas.TextSpan
	current := []schemas.TextSpan{sorted[0]}
	lastY := sorted[0].Rect.Min.Y

	for _, span := range sorted[1:] {
		if span.Rect.Min.Y-lastY < rowThreshold {
			current = append(current, span)
		} else {
			rows = append(rows, sortRow(current))
			current = []schemas.TextSpan{span}
		}
		lastY = span.Rect.Min.Y
	}
	rows = append(rows, sortRow(current))
	return rows
}

func sortRow(row []schemas.TextSpan) []schemas.TextSpan {
	sort.SliceStable(row, func(i, j int) bool {
		return row[i].Rect.Min.X < row[j].Rect.Min.X
	})
	return row
}

// Table maps grouped rows onto the given column names. Rows with a cell count
// different from the header are dropped; OCR noise produces ragged rows and a
// misaligned record is worse than a missing one.
func Table(spans []schemas.TextSpan, columns []string) []map[string]string {
	rows := GroupRows(spans)
	var out []map[string]string
	for _, row := range rows {
		if len(row) != len(columns) {
			continue
		}
		record := make(map[string]string, len(columns))
		for i, col := range columns {
			record[col] = row[i].Text
		}
		out = append(out, record)
	}
	return out
}
