package schemas

import (
	"fmt"
	"image"
	"strings"
	"time"
)

// -- Element Resolution Schemas --

// Strategy identifies a mechanism for locating a UI element on screen.
// Strategies have very different reliability and cost profiles, which is why
// the resolver tries them in an explicitly configured order.
type Strategy string

const (
	// StrategyUIA queries the OS accessibility tree. Fast and exact, but the
	// terminal's custom-rendered widgets are mostly invisible to it.
	StrategyUIA Strategy = "uia"
	// StrategyOCR locates an element by recognized text. Tolerant of custom
	// rendering, but costs a capture plus a recognition pass.
	StrategyOCR Strategy = "ocr"
	// StrategyImage locates an element by template correlation. Last-resort
	// pixel fallback, sensitive to resolution and theme changes.
	StrategyImage Strategy = "image"
	// StrategyPosition returns a fixed rectangle. Brittle; used only when no
	// other signal exists.
	StrategyPosition Strategy = "position"
	// StrategyHybrid walks the configured fallback chain until one strategy
	// produces a match.
	StrategyHybrid Strategy = "hybrid"
)

// ElementSpec is an abstract query for a UI element. It is an immutable value
// constructed per lookup; the resolver decides which fields a given strategy
// consumes.
type ElementSpec struct {
	// Name is the accessibility name of the element, matched exactly.
	Name string `json:"name,omitempty"`
	// AutomationID is the stable identifier exposed by the accessibility tree.
	AutomationID string `json:"automation_id,omitempty"`
	// ControlType narrows accessibility lookups ("Button", "Edit", ...).
	ControlType string `json:"control_type,omitempty"`
	// TextPattern is the text to locate via OCR. Interpreted as a
	// case-insensitive substring unless Regex is set.
	TextPattern string `json:"text_pattern,omitempty"`
	// Regex treats TextPattern as a regular expression.
	Regex bool `json:"regex,omitempty"`
	// Template names a reference image for template matching, relative to the
	// configured template directory.
	Template string `json:"template,omitempty"`
	// Region constrains the search area, or supplies the answer outright for
	// the position strategy. Nil means the whole terminal window.
	Region *image.Rectangle `json:"region,omitempty"`
	// Strategy pins a single strategy, or StrategyHybrid for the fallback chain.
	Strategy Strategy `json:"strategy,omitempty"`
}

// Key returns a stable identity for the spec, used as the per-action cache key.
func (s ElementSpec) Key() string {
	var b strings.Builder
	b.WriteString(string(s.Strategy))
	for _, part := range []string{s.Name, s.AutomationID, s.ControlType, s.TextPattern, s.Template} {
		b.WriteByte('|')
		b.WriteString(part)
	}
	if s.Regex {
		b.WriteString("|re")
	}
	if s.Region != nil {
		fmt.Fprintf(&b, "|%d,%d,%d,%d", s.Region.Min.X, s.Region.Min.Y, s.Region.Max.X, s.Region.Max.Y)
	}
	return b.String()
}

func (s ElementSpec) String() string {
	parts := make([]string, 0, 4)
	if s.Name != "" {
		parts = append(parts, fmt.Sprintf("name=%q", s.Name))
	}
	if s.AutomationID != "" {
		parts = append(parts, fmt.Sprintf("id=%q", s.AutomationID))
	}
	if s.TextPattern != "" {
		parts = append(parts, fmt.Sprintf("text=%q", s.TextPattern))
	}
	if s.Template != "" {
		parts = append(parts, fmt.Sprintf("template=%q", s.Template))
	}
	return fmt.Sprintf("ElementSpec(%s strategy=%s)", strings.Join(parts, " "), s.Strategy)
}

// ResolvedElement is the concrete, time-stamped outcome of resolving an
// ElementSpec. It is owned transiently by the resolver and never persisted past
// a single action's lifetime; the underlying UI can move between calls.
type ResolvedElement struct {
	// Rect is the element's bounding rectangle in absolute screen coordinates.
	Rect image.Rectangle `json:"rect"`
	// Strategy that produced the match.
	Strategy Strategy `json:"strategy"`
	// Confidence is 1.0 for exact (accessibility / position) matches, the
	// recognizer-reported score for OCR and image matches.
	Confidence float64 `json:"confidence"`
	// Text is the recognized text for OCR matches, if any.
	Text string `json:"text,omitempty"`
	// ResolvedAt records when the match was taken from the screen.
	ResolvedAt time.Time `json:"resolved_at"`
}

// Center returns the click target for the element.
func (e ResolvedElement) Center() image.Point {
	return image.Pt(e.Rect.Min.X+e.Rect.Dx()/2, e.Rect.Min.Y+e.Rect.Dy()/2)
}
