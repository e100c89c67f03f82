package recog

import (
	"strconv"
	"strings"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// ParsePrice converts an OCR'd price or quantity cell into a number. It
// tolerates the decorations trading terminals put on numeric cells:
// currency signs, thousands separators, and parenthesized negatives.
func ParsePrice(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, schemas.Errorf(schemas.ClassRecognitionError, schemas.PhaseResolution,
			"empty numeric cell")
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "+")
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, schemas.Errorf(schemas.ClassRecognitionError, schemas.PhaseResolution,
			"cell %q is not numeric", cell)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// NormalizeSymbol canonicalizes an instrument symbol read off the screen:
// uppercase, surrounding whitespace dropped, and the trailing punctuation
// OCR tends to attach stripped.
func NormalizeSymbol(cell string) string {
	s := strings.ToUpper(strings.TrimSpace(cell))
	return strings.TrimRight(s, ".,:;|")
}
