package recog

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// fakeBackend returns canned spans, or an error, without touching Tesseract.
type fakeBackend struct {
	spans []schemas.TextSpan
	err   error
}

func (f *fakeBackend) Words(_ image.Image) ([]schemas.TextSpan, error) {
	return f.spans, f.err
}

func span(text string, x, y int, conf float64) schemas.TextSpan {
	return schemas.TextSpan{Text: text, Rect: image.Rect(x, y, x+50, y+14), Confidence: conf}
}

func newTestEngine(backend ocrBackend, threshold float64) *Engine {
	return &Engine{
		backend:   backend,
		templates: newTemplateStore("testdata", 1.0),
		threshold: threshold,
		log:       zap.NewNop(),
	}
}

func TestRecognizeTextFiltersByConfidence(t *testing.T) {
	e := newTestEngine(&fakeBackend{spans: []schemas.TextSpan{
		span("Transmit", 10, 10, 0.92),
		span("smudge", 10, 40, 0.31),
	}}, 0.5)

	spans, err := e.RecognizeText(context.Background(), image.NewRGBA(image.Rect(0, 0, 100, 100)))
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "Transmit", spans[0].Text)
}

func TestRecognizeTextClassifiesBackendFailure(t *testing.T) {
	e := newTestEngine(&fakeBackend{err: errors.New("tesseract exploded")}, 0.5)

	_, err := e.RecognizeText(context.Background(), image.NewRGBA(image.Rect(0, 0, 10, 10)))
	require.Error(t, err)
	assert.Equal(t, schemas.ClassRecognitionError, schemas.ClassOf(err))
}

func TestFindTextSubstringAndRegex(t *testing.T) {
	e := newTestEngine(&fakeBackend{spans: []schemas.TextSpan{
		span("Transmit", 10, 10, 0.9),
		span("TRANSMITTED", 10, 40, 0.9),
		span("Cancel", 10, 70, 0.9),
	}}, 0.5)
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	matches, err := e.FindText(context.Background(), img, "transmit", false)
	require.NoError(t, err)
	assert.Len(t, matches, 2, "substring match is case-insensitive")

	matches, err = e.FindText(context.Background(), img, `^transmit$`, true)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Transmit", matches[0].Text)

	_, err = e.FindText(context.Background(), img, `((`, true)
	require.Error(t, err)
	assert.Equal(t, schemas.ClassValidationError, schemas.ClassOf(err))
}

func TestGroupRowsOrdering(t *testing.T) {
	// Deliberately shuffled input: two rows with three cells each.
	spans := []schemas.TextSpan{
		span("150.25", 200, 52, 0.9),
		span("AAPL", 10, 50, 0.9),
		span("MSFT", 10, 90, 0.9),
		span("100", 100, 48, 0.9),
		span("330.10", 200, 91, 0.9),
		span("50", 100, 92, 0.9),
	}

	rows := GroupRows(spans)
	require.Len(t, rows, 2)

	first := []string{rows[0][0].Text, rows[0][1].Text, rows[0][2].Text}
	assert.Equal(t, []string{"AAPL", "100", "150.25"}, first)
	second := []string{rows[1][0].Text, rows[1][1].Text, rows[1][2].Text}
	assert.Equal(t, []string{"MSFT", "50", "330.10"}, second)
}

func TestGroupRowsEmpty(t *testing.T) {
	assert.Nil(t, GroupRows(nil))
}

func TestTableDropsRaggedRows(t *testing.T) {
	spans := []schemas.TextSpan{
		span("AAPL", 10, 50, 0.9),
		span("100", 100, 50, 0.9),
		// Second row lost a cell to OCR noise.
		span("MSFT", 10, 90, 0.9),
	}

	records := Table(spans, []string{"symbol", "quantity"})
	require.Len(t, records, 1)
	assert.Equal(t, "AAPL", records[0]["symbol"])
	assert.Equal(t, "100", records[0]["quantity"])
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		cell string
		want float64
	}{
		{"150.25", 150.25},
		{"$1,250.50", 1250.50},
		{"(215.00)", -215.00},
		{"+0.75", 0.75},
		{" 100 ", 100},
	}
	for _, tc := range cases {
		got, err := ParsePrice(tc.cell)
		require.NoError(t, err, "cell %q", tc.cell)
		assert.Equal(t, tc.want, got, "cell %q", tc.cell)
	}

	for _, bad := range []string{"", "N/A", "--"} {
		_, err := ParsePrice(bad)
		require.Error(t, err, "cell %q", bad)
		assert.Equal(t, schemas.ClassRecognitionError, schemas.ClassOf(err))
	}
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeSymbol(" aapl. "))
	assert.Equal(t, "BRK.B", NormalizeSymbol("brk.b"))
	assert.Equal(t, "MSFT", NormalizeSymbol("MSFT,"))
}
