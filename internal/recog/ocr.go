package recog

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"regexp"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// ocrBackend is the seam between the engine and the recognition library, so
// tests can run without a Tesseract installation.
type ocrBackend interface {
	Words(img image.Image) ([]schemas.TextSpan, error)
}

// tesseractBackend reads word boxes through gosseract.
type tesseractBackend struct {
	language string
}

func (b *tesseractBackend) Words(img image.Image) ([]schemas.TextSpan, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding capture for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if b.language != "" {
		if err := client.SetLanguage(b.language); err != nil {
			return nil, fmt.Errorf("setting OCR language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("loading capture into OCR: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("reading OCR word boxes: %w", err)
	}

	spans := make([]schemas.TextSpan, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		spans = append(spans, schemas.TextSpan{
			Text: word,
			Rect: box.Box,
			// Tesseract reports 0-100; normalize to the 0-1 range the
			// resolver's threshold is configured in.
			Confidence: box.Confidence / 100.0,
		})
	}
	return spans, nil
}

// Engine implements schemas.Recognizer. Text recognition goes through
// Tesseract, template matching through normalized cross correlation.
type Engine struct {
	backend   ocrBackend
	templates *templateStore
	threshold float64
	log       *zap.Logger
}

// NewEngine builds a recognizer. templateDir holds the reference images;
// scale adjusts them to the live display resolution.
func NewEngine(templateDir string, scale float64, threshold float64, logger *zap.Logger) *Engine {
	return &Engine{
		backend:   &tesseractBackend{language: "eng"},
		templates: newTemplateStore(templateDir, scale),
		threshold: threshold,
		log:       logger.Named("recog"),
	}
}

// RecognizeText returns every text span in img at or above the configured
// confidence threshold. Failures are classified as recognition errors so the
// resolver treats them as a failed attempt rather than a fatal condition.
func (e *Engine) RecognizeText(ctx context.Context, img image.Image) ([]schemas.TextSpan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spans, err := e.backend.Words(img)
	if err != nil {
		return nil, schemas.NewError(schemas.ClassRecognitionError, schemas.PhaseResolution, err)
	}

	kept := spans[:0]
	for _, span := range spans {
		if span.Confidence >= e.threshold {
			kept = append(kept, span)
		}
	}
	e.log.Debug("OCR pass complete", zap.Int("spans", len(spans)), zap.Int("kept", len(kept)))
	return kept, nil
}

// FindText returns the spans in img matching pattern, exact-substring by
// default or as a regular expression when regex is set. Matching is
// case-insensitive either way.
func (e *Engine) FindText(ctx context.Context, img image.Image, pattern string, regex bool) ([]schemas.TextSpan, error) {
	spans, err := e.RecognizeText(ctx, img)
	if err != nil {
		return nil, err
	}

	var matcher func(string) bool
	if regex {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, schemas.Errorf(schemas.ClassValidationError, schemas.PhaseResolution,
				"invalid text pattern %q: %v", pattern, err)
		}
		matcher = re.MatchString
	} else {
		needle := strings.ToLower(pattern)
		matcher = func(s string) bool { return strings.Contains(strings.ToLower(s), needle) }
	}

	var matches []schemas.TextSpan
	for _, span := range spans {
		if matcher(span.Text) {
			matches = append(matches, span)
		}
	}
	return matches, nil
}
