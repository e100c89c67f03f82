package input

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/config"
)

// failSafeMargin is how close to a display corner the pointer must sit to
// trigger the abort gesture.
const failSafeMargin = 4

// Synthesizer implements schemas.InputSynthesizer over a Driver. All calls
// block, honor ctx cancellation, and guarantee that a synthesized key-down is
// matched by a key-up on every exit path.
type Synthesizer struct {
	drv       Driver
	limiter   *rate.Limiter
	moveDelay time.Duration
	failSafe  bool
	display   image.Rectangle
	log       *zap.Logger

	aborted atomic.Bool

	// held tracks currently pressed modifier keys so an abort can release them.
	mu   sync.Mutex
	held []string
}

// NewSynthesizer builds a synthesizer. display is the bounds used for the
// fail-safe corner check.
func NewSynthesizer(drv Driver, cfg config.InputConfig, safety config.SafetyConfig, display image.Rectangle, logger *zap.Logger) *Synthesizer {
	limit := rate.Inf
	if cfg.KeystrokesPerSecond > 0 {
		limit = rate.Limit(cfg.KeystrokesPerSecond)
	}
	return &Synthesizer{
		drv:       drv,
		limiter:   rate.NewLimiter(limit, 1),
		moveDelay: cfg.MouseMoveDelay,
		failSafe:  safety.FailSafeEnabled,
		display:   display,
		log:       logger.Named("input"),
	}
}

// Abort immediately halts any in-flight synthesis and releases held keys.
// Safe to call from any goroutine.
func (s *Synthesizer) Abort() {
	s.aborted.Store(true)
	s.releaseHeld()
	s.log.Warn("Input synthesis aborted")
}

// Reset clears a previous abort so the next action can synthesize again.
func (s *Synthesizer) Reset() {
	s.aborted.Store(false)
}

// MoveTo moves the pointer to absolute screen coordinates.
func (s *Synthesizer) MoveTo(ctx context.Context, x, y int) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.drv.MoveMouse(x, y)
	return s.sleep(ctx, s.moveDelay)
}

// Click moves to the coordinates and left-clicks.
func (s *Synthesizer) Click(ctx context.Context, x, y int) error {
	return s.clickButton(ctx, x, y, "left", false)
}

// DoubleClick moves to the coordinates and double-clicks.
func (s *Synthesizer) DoubleClick(ctx context.Context, x, y int) error {
	return s.clickButton(ctx, x, y, "left", true)
}

// RightClick moves to the coordinates and right-clicks.
func (s *Synthesizer) RightClick(ctx context.Context, x, y int) error {
	return s.clickButton(ctx, x, y, "right", false)
}

func (s *Synthesizer) clickButton(ctx context.Context, x, y int, button string, double bool) error {
	if err := s.MoveTo(ctx, x, y); err != nil {
		return err
	}
	if err := s.check(ctx); err != nil {
		return err
	}
	s.drv.Click(button, double)
	return nil
}

// TypeText enters s character by character at the configured pace. An aborted
// or cancelled call stops between keystrokes, never mid-chord.
func (s *Synthesizer) TypeText(ctx context.Context, text string) error {
	for _, r := range text {
		if err := s.check(ctx); err != nil {
			return err
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		s.drv.TypeStr(string(r))
	}
	return nil
}

// KeyChord holds the modifier set, taps key, and releases the modifiers. The
// release is deferred so it runs on every exit path, including cancellation
// between the press and the tap.
func (s *Synthesizer) KeyChord(ctx context.Context, modifiers []string, key string) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	for _, mod := range modifiers {
		if err := s.drv.Toggle(mod, "down"); err != nil {
			s.releaseHeld()
			return fmt.Errorf("pressing modifier %q: %w", mod, err)
		}
		s.trackHeld(mod)
	}
	defer s.releaseHeld()

	if err := s.check(ctx); err != nil {
		return err
	}
	if err := s.drv.Tap(key); err != nil {
		return fmt.Errorf("tapping key %q: %w", key, err)
	}
	return nil
}

// Press taps a single key without modifiers.
func (s *Synthesizer) Press(ctx context.Context, key string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := s.drv.Tap(key); err != nil {
		return fmt.Errorf("tapping key %q: %w", key, err)
	}
	return nil
}

// check is consulted before every primitive: it fails on cancellation, a
// previous abort, or the pointer resting in a display corner (the operator's
// out-of-band stop gesture).
func (s *Synthesizer) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.aborted.Load() {
		return schemas.Errorf(schemas.ClassActionFailed, schemas.PhaseExecution,
			"input synthesis aborted")
	}
	if s.failSafe && s.pointerInCorner() {
		s.Abort()
		return schemas.Errorf(schemas.ClassActionFailed, schemas.PhaseExecution,
			"fail-safe triggered: pointer in display corner")
	}
	return nil
}

// sleep waits d, returning early if ctx is cancelled.
func (s *Synthesizer) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Synthesizer) pointerInCorner() bool {
	x, y := s.drv.Location()
	nearX := x <= s.display.Min.X+failSafeMargin || x >= s.display.Max.X-failSafeMargin
	nearY := y <= s.display.Min.Y+failSafeMargin || y >= s.display.Max.Y-failSafeMargin
	return nearX && nearY
}

func (s *Synthesizer) trackHeld(key string) {
	s.mu.Lock()
	s.held = append(s.held, key)
	s.mu.Unlock()
}

// releaseHeld releases held modifiers in reverse press order. Release errors
// are logged, not returned: on the abort path there is nothing better to do,
// and a stuck modifier must still get its remaining release attempts.
func (s *Synthesizer) releaseHeld() {
	s.mu.Lock()
	held := s.held
	s.held = nil
	s.mu.Unlock()

	for i := len(held) - 1; i >= 0; i-- {
		if err := s.drv.Toggle(held[i], "up"); err != nil {
			s.log.Error("Failed to release held key", zap.String("key", held[i]), zap.Error(err))
		}
	}
}
