package resolve

import (
	"context"
	"image"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/config"
)

// matcher is the slice of the recognition engine the pixel strategies need.
type matcher interface {
	FindText(ctx context.Context, img image.Image, pattern string, regex bool) ([]schemas.TextSpan, error)
	MatchTemplate(ctx context.Context, img image.Image, template string) ([]schemas.TemplateMatch, error)
}

// Strategies bundles the built-in finders and their collaborators.
type Strategies struct {
	capture  schemas.CaptureAdapter
	match    matcher
	tree     schemas.TreeQuerier
	template float64
	log      *zap.Logger
}

// NewStrategies builds the standard finder set. tree may be nil; the
// accessibility strategy then reports itself unavailable and the chain moves
// on.
func NewStrategies(capture schemas.CaptureAdapter, match matcher, tree schemas.TreeQuerier, cfg config.ResolverConfig, logger *zap.Logger) *Strategies {
	if tree == nil {
		tree = unavailableTree{}
	}
	return &Strategies{
		capture:  capture,
		match:    match,
		tree:     tree,
		template: cfg.TemplateThreshold,
		log:      logger.Named("strategies"),
	}
}

// RegisterAll installs the built-in finders on a resolver.
func (s *Strategies) RegisterAll(r *Resolver) {
	r.RegisterStrategy(schemas.StrategyUIA, s.UIA)
	r.RegisterStrategy(schemas.StrategyOCR, s.OCR)
	r.RegisterStrategy(schemas.StrategyImage, s.Image)
	r.RegisterStrategy(schemas.StrategyPosition, s.Position)
}

// UIA consults the accessibility tree. It needs an AutomationID or an exact
// Name; a hit is authoritative (confidence 1.0).
func (s *Strategies) UIA(ctx context.Context, spec schemas.ElementSpec) ([]schemas.ResolvedElement, error) {
	if !s.tree.Available() {
		return nil, schemas.Errorf(schemas.ClassRecognitionError, schemas.PhaseResolution,
			"accessibility backend unavailable")
	}
	if spec.AutomationID == "" && spec.Name == "" {
		return nil, schemas.Errorf(schemas.ClassValidationError, schemas.PhaseResolution,
			"accessibility lookup needs an automation id or a name")
	}
	rect, err := s.tree.Find(ctx, spec)
	if err != nil {
		return nil, err
	}
	return []schemas.ResolvedElement{{Rect: rect, Confidence: 1.0}}, nil
}

// OCR captures the search region and locates the spec's text pattern in it.
func (s *Strategies) OCR(ctx context.Context, spec schemas.ElementSpec) ([]schemas.ResolvedElement, error) {
	if spec.TextPattern == "" {
		return nil, schemas.Errorf(schemas.ClassValidationError, schemas.PhaseResolution,
			"ocr lookup needs a text pattern")
	}
	img, err := s.capture.Capture(ctx, spec.Region)
	if err != nil {
		return nil, err
	}
	spans, err := s.match.FindText(ctx, img, spec.TextPattern, spec.Regex)
	if err != nil {
		return nil, err
	}

	offset := regionOffset(spec.Region)
	out := make([]schemas.ResolvedElement, 0, len(spans))
	for _, span := range spans {
		out = append(out, schemas.ResolvedElement{
			Rect:       span.Rect.Add(offset),
			Confidence: span.Confidence,
			Text:       span.Text,
		})
	}
	return out, nil
}

// Image captures the search region and correlates the spec's template against
// it, accepting only scores at or above the configured threshold.
func (s *Strategies) Image(ctx context.Context, spec schemas.ElementSpec) ([]schemas.ResolvedElement, error) {
	if spec.Template == "" {
		return nil, schemas.Errorf(schemas.ClassValidationError, schemas.PhaseResolution,
			"image lookup needs a template name")
	}
	img, err := s.capture.Capture(ctx, spec.Region)
	if err != nil {
		return nil, err
	}
	matches, err := s.match.MatchTemplate(ctx, img, spec.Template)
	if err != nil {
		return nil, err
	}

	offset := regionOffset(spec.Region)
	out := make([]schemas.ResolvedElement, 0, len(matches))
	for _, m := range matches {
		if m.Score < s.template {
			s.log.Debug("Template match below threshold",
				zap.String("template", spec.Template),
				zap.Float64("score", m.Score),
				zap.Float64("threshold", s.template))
			continue
		}
		out = append(out, schemas.ResolvedElement{
			Rect:       m.Rect.Add(offset),
			Confidence: m.Score,
		})
	}
	return out, nil
}

// Position returns the spec's region verbatim. It never inspects the screen,
// so its confidence is nominal rather than observed.
func (s *Strategies) Position(ctx context.Context, spec schemas.ElementSpec) ([]schemas.ResolvedElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec.Region == nil {
		return nil, schemas.Errorf(schemas.ClassValidationError, schemas.PhaseResolution,
			"position lookup needs a region")
	}
	return []schemas.ResolvedElement{{Rect: *spec.Region, Confidence: 1.0}}, nil
}

// regionOffset translates image-relative match coordinates back to screen
// coordinates when the capture covered a sub-region.
func regionOffset(region *image.Rectangle) image.Point {
	if region == nil {
		return image.Point{}
	}
	return region.Min
}

// unavailableTree is the default accessibility backend. The terminal's
// custom-rendered widgets expose almost nothing through the tree, so a
// deployment without a real backend simply never wins the uia slot.
type unavailableTree struct{}

func (unavailableTree) Find(context.Context, schemas.ElementSpec) (image.Rectangle, error) {
	return image.Rectangle{}, schemas.Errorf(schemas.ClassRecognitionError, schemas.PhaseResolution,
		"no accessibility backend configured")
}

func (unavailableTree) Available() bool { return false }
