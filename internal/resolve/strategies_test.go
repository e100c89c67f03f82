package resolve

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/config"
)

type fakeCapture struct {
	lastRegion *image.Rectangle
}

func (f *fakeCapture) Capture(_ context.Context, region *image.Rectangle) (image.Image, error) {
	f.lastRegion = region
	if region != nil {
		return image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy())), nil
	}
	return image.NewRGBA(image.Rect(0, 0, 1920, 1080)), nil
}

type fakeMatcher struct {
	spans   []schemas.TextSpan
	matches []schemas.TemplateMatch
	err     error
}

func (f *fakeMatcher) FindText(context.Context, image.Image, string, bool) ([]schemas.TextSpan, error) {
	return f.spans, f.err
}

func (f *fakeMatcher) MatchTemplate(context.Context, image.Image, string) ([]schemas.TemplateMatch, error) {
	return f.matches, f.err
}

type fakeTree struct {
	rect image.Rectangle
	err  error
}

func (f *fakeTree) Find(context.Context, schemas.ElementSpec) (image.Rectangle, error) {
	return f.rect, f.err
}
func (f *fakeTree) Available() bool { return true }

func setupStrategies(capture *fakeCapture, match *fakeMatcher, tree schemas.TreeQuerier) *Strategies {
	return NewStrategies(capture, match, tree,
		config.ResolverConfig{TemplateThreshold: 0.8}, zap.NewNop())
}

func TestOCRTranslatesRegionCoordinates(t *testing.T) {
	capture := &fakeCapture{}
	match := &fakeMatcher{spans: []schemas.TextSpan{
		{Text: "BUY", Rect: image.Rect(5, 10, 45, 25), Confidence: 0.92},
	}}
	s := setupStrategies(capture, match, nil)

	region := image.Rect(100, 200, 400, 300)
	els, err := s.OCR(context.Background(), schemas.ElementSpec{
		TextPattern: "BUY",
		Region:      &region,
	})
	require.NoError(t, err)
	require.Len(t, els, 1)
	assert.Equal(t, image.Rect(105, 210, 145, 225), els[0].Rect, "match must land in screen coordinates")
	assert.Equal(t, 0.92, els[0].Confidence)
	assert.Equal(t, &region, capture.lastRegion)
}

func TestOCRRequiresPattern(t *testing.T) {
	s := setupStrategies(&fakeCapture{}, &fakeMatcher{}, nil)
	_, err := s.OCR(context.Background(), schemas.ElementSpec{})
	assert.Equal(t, schemas.ClassValidationError, schemas.ClassOf(err))
}

func TestImageAppliesThreshold(t *testing.T) {
	match := &fakeMatcher{matches: []schemas.TemplateMatch{
		{Rect: image.Rect(0, 0, 20, 20), Score: 0.75},
	}}
	s := setupStrategies(&fakeCapture{}, match, nil)

	els, err := s.Image(context.Background(), schemas.ElementSpec{Template: "transmit.png"})
	require.NoError(t, err)
	assert.Empty(t, els, "sub-threshold correlation must not produce a candidate")

	match.matches[0].Score = 0.91
	els, err = s.Image(context.Background(), schemas.ElementSpec{Template: "transmit.png"})
	require.NoError(t, err)
	require.Len(t, els, 1)
	assert.Equal(t, 0.91, els[0].Confidence)
}

func TestUIADefaultsToUnavailable(t *testing.T) {
	s := setupStrategies(&fakeCapture{}, &fakeMatcher{}, nil)
	_, err := s.UIA(context.Background(), schemas.ElementSpec{AutomationID: "btnBuy"})
	require.Error(t, err)
	assert.Equal(t, schemas.ClassRecognitionError, schemas.ClassOf(err))
}

func TestUIAUsesTreeBackend(t *testing.T) {
	tree := &fakeTree{rect: image.Rect(10, 10, 90, 40)}
	s := setupStrategies(&fakeCapture{}, &fakeMatcher{}, tree)

	els, err := s.UIA(context.Background(), schemas.ElementSpec{AutomationID: "btnBuy"})
	require.NoError(t, err)
	require.Len(t, els, 1)
	assert.Equal(t, image.Rect(10, 10, 90, 40), els[0].Rect)
	assert.Equal(t, 1.0, els[0].Confidence)

	_, err = s.UIA(context.Background(), schemas.ElementSpec{})
	assert.Equal(t, schemas.ClassValidationError, schemas.ClassOf(err))
}

func TestPositionReturnsRegionVerbatim(t *testing.T) {
	s := setupStrategies(&fakeCapture{}, &fakeMatcher{}, nil)

	region := image.Rect(700, 500, 760, 530)
	els, err := s.Position(context.Background(), schemas.ElementSpec{Region: &region})
	require.NoError(t, err)
	require.Len(t, els, 1)
	assert.Equal(t, region, els[0].Rect)

	_, err = s.Position(context.Background(), schemas.ElementSpec{})
	assert.Equal(t, schemas.ClassValidationError, schemas.ClassOf(err))
}

func TestRegisterAllCoversBuiltins(t *testing.T) {
	s := setupStrategies(&fakeCapture{}, &fakeMatcher{spans: []schemas.TextSpan{
		{Text: "Portfolio", Rect: image.Rect(0, 0, 80, 20), Confidence: 0.9},
	}}, nil)
	r := NewResolver([]schemas.Strategy{
		schemas.StrategyUIA, schemas.StrategyOCR, schemas.StrategyImage, schemas.StrategyPosition,
	}, testTiming(), zap.NewNop())
	s.RegisterAll(r)

	el, err := r.Resolve(context.Background(), schemas.ElementSpec{TextPattern: "Portfolio"})
	require.NoError(t, err)
	assert.Equal(t, schemas.StrategyOCR, el.Strategy)
}
