package executor

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/recog"
)

func screenActions() []Definition {
	return []Definition{
		{
			Name:    "screenshot",
			Kind:    schemas.KindRead,
			Summary: "Capture the screen or a named region as a PNG",
			ParamHints: map[string]string{
				"region": "optional catalog region name; omit for the full display",
			},
			Run: runScreenshot,
		},
		{
			Name:    "read_screen",
			Kind:    schemas.KindRead,
			Summary: "Recognize all text on the screen or in a named region",
			ParamHints: map[string]string{
				"region": "optional catalog region name; omit for the full display",
			},
			Run: runReadScreen,
		},
	}
}

// captureParam resolves the optional region parameter against the catalog.
// An unknown region name is a validation failure, not a silent full-screen
// grab.
func captureParam(x *Exec, p schemas.Params) (*image.Rectangle, error) {
	name := p.String("region", "")
	if name == "" {
		return nil, nil
	}
	if x.Regions == nil || !x.Regions.Has(name) {
		return nil, schemas.Errorf(schemas.ClassValidationError, schemas.PhaseValidation,
			"unknown region %q", name)
	}
	r, err := x.Regions.Bounds(name)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func runScreenshot(ctx context.Context, x *Exec, p schemas.Params) (string, any, error) {
	region, err := captureParam(x, p)
	if err != nil {
		return "", nil, err
	}
	img, err := x.Screen.Capture(ctx, region)
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", nil, schemas.Errorf(schemas.ClassActionFailed, schemas.PhaseExecution,
			"encoding screenshot: %v", err)
	}

	bounds := img.Bounds()
	data := map[string]any{
		"image":  base64.StdEncoding.EncodeToString(buf.Bytes()),
		"format": "png",
		"width":  bounds.Dx(),
		"height": bounds.Dy(),
	}
	return fmt.Sprintf("captured %dx%d", bounds.Dx(), bounds.Dy()), data, nil
}

func runReadScreen(ctx context.Context, x *Exec, p schemas.Params) (string, any, error) {
	region, err := captureParam(x, p)
	if err != nil {
		return "", nil, err
	}
	img, err := x.Screen.Capture(ctx, region)
	if err != nil {
		return "", nil, err
	}
	spans, err := x.Recog.RecognizeText(ctx, img)
	if err != nil {
		return "", nil, err
	}

	// Reassemble the spans into visual lines so the caller gets readable
	// text alongside the raw spans.
	var lines []string
	for _, row := range recog.GroupRows(spans) {
		words := make([]string, len(row))
		for i, span := range row {
			words[i] = span.Text
		}
		lines = append(lines, strings.Join(words, " "))
	}

	data := map[string]any{
		"text":  strings.Join(lines, "\n"),
		"spans": spans,
	}
	return fmt.Sprintf("recognized %d text spans", len(spans)), data, nil
}
