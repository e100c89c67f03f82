package screen

import (
	"context"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/config"
)

// Capturer implements schemas.CaptureAdapter over the OS screenshot facility.
// Every call takes a fresh snapshot; pixels are never cached here because a
// stale frame would feed the resolver coordinates the UI has moved away from.
type Capturer struct {
	display int
	log     *zap.Logger
}

// NewCapturer builds a capturer for the configured display.
func NewCapturer(cfg config.ScreenConfig, logger *zap.Logger) (*Capturer, error) {
	if n := screenshot.NumActiveDisplays(); cfg.Display >= n {
		return nil, fmt.Errorf("display %d not available (%d active)", cfg.Display, n)
	}
	return &Capturer{display: cfg.Display, log: logger.Named("capture")}, nil
}

// Capture grabs the given screen rectangle, or the whole display when region
// is nil.
func (c *Capturer) Capture(ctx context.Context, region *image.Rectangle) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rect := screenshot.GetDisplayBounds(c.display)
	if region != nil {
		r := region.Intersect(rect)
		if r.Empty() {
			return nil, fmt.Errorf("capture region %v lies outside display bounds %v", *region, rect)
		}
		rect = r
	}

	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, schemas.NewError(schemas.ClassRecognitionError, schemas.PhaseResolution,
			fmt.Errorf("screen capture failed: %w", err))
	}

	c.log.Debug("Captured screen region",
		zap.Int("width", rect.Dx()), zap.Int("height", rect.Dy()))
	return img, nil
}

// DisplayBounds returns the full rectangle of the configured display.
func (c *Capturer) DisplayBounds() image.Rectangle {
	return screenshot.GetDisplayBounds(c.display)
}
