package schemas

import (
	"context"
	"image"
)

// -- Recognition Schemas --

// TextSpan is one recognized run of text with its location and confidence.
type TextSpan struct {
	Text       string          `json:"text"`
	Rect       image.Rectangle `json:"rect"`
	Confidence float64         `json:"confidence"`
}

// TemplateMatch is one template-correlation hit.
type TemplateMatch struct {
	Rect  image.Rectangle `json:"rect"`
	Score float64         `json:"score"`
}

// -- Core Collaborator Interfaces --

// CaptureAdapter produces a pixel snapshot of the display on demand. Every
// resolution attempt that needs pixels takes a fresh capture; images are never
// cached across chain polls, so each poll sees current UI state.
type CaptureAdapter interface {
	// Capture grabs the given screen rectangle, or the full primary display
	// when region is nil.
	Capture(ctx context.Context, region *image.Rectangle) (image.Image, error)
}

// Recognizer turns captured pixels into structured matches.
type Recognizer interface {
	// RecognizeText returns every text span found in img, already filtered by
	// the backend's confidence threshold.
	RecognizeText(ctx context.Context, img image.Image) ([]TextSpan, error)
	// MatchTemplate locates the named reference image within img by
	// normalized correlation.
	MatchTemplate(ctx context.Context, img image.Image, template string) ([]TemplateMatch, error)
}

// InputSynthesizer executes primitive keyboard and mouse operations. Every
// call blocks until the input has been delivered, honors ctx cancellation, and
// guarantees that any synthesized key-down has a matching key-up on every exit
// path. Implementations must honor a global abort gesture that halts in-flight
// synthesis immediately.
type InputSynthesizer interface {
	MoveTo(ctx context.Context, x, y int) error
	Click(ctx context.Context, x, y int) error
	DoubleClick(ctx context.Context, x, y int) error
	RightClick(ctx context.Context, x, y int) error
	// TypeText enters s with the configured inter-keystroke delay.
	TypeText(ctx context.Context, s string) error
	// KeyChord presses the modifier set, taps key, and releases the modifiers.
	KeyChord(ctx context.Context, modifiers []string, key string) error
	// Press taps a single key without modifiers.
	Press(ctx context.Context, key string) error
	// Abort immediately halts any in-flight synthesis and releases held keys.
	Abort()
}

// TreeQuerier looks up elements through the OS accessibility layer. It is an
// optional collaborator: the terminal's custom-rendered widgets expose almost
// nothing through it, so a deployment without a working backend simply leans
// on the OCR and image strategies.
type TreeQuerier interface {
	// Find returns the rectangle of the first element matching the spec's
	// AutomationID (preferred) or exact Name, or an error when nothing matches.
	Find(ctx context.Context, spec ElementSpec) (image.Rectangle, error)
	// Available reports whether the backend can serve lookups at all.
	Available() bool
}
