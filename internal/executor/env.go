package executor

import (
	"context"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/config"
	"github.com/xkilldash9x/deskpilot/internal/resolve"
	"github.com/xkilldash9x/deskpilot/internal/screen"
)

// InputDevice is the synthesizer surface the executor drives, including the
// per-action re-arm after a previous abort.
type InputDevice interface {
	schemas.InputSynthesizer
	Reset()
}

// HotkeyRunner fires a terminal shortcut by action id.
type HotkeyRunner interface {
	Execute(ctx context.Context, id string) error
}

// Terminal is the window bookkeeping surface actions rely on.
type Terminal interface {
	Ensure() error
	Bounds() (image.Rectangle, error)
	Activate() error
	// PaperMode reports whether the attached session is a paper-trading one.
	PaperMode() bool
}

// Env is the execution context handed to every action function. Actions get
// their collaborators through this one value instead of inheriting them; an
// action is just a function of (ctx, env, params).
type Env struct {
	Resolver *resolve.Resolver
	Input    InputDevice
	Hotkeys  HotkeyRunner
	Screen   schemas.CaptureAdapter
	Recog    schemas.Recognizer
	Regions  *screen.Catalog
	Window   Terminal
	Timing   config.TimingConfig
	Log      *zap.Logger
}

// Settle pauses for the configured settle delay so the terminal can render
// its response to the previous input step. Interruptible via ctx.
func (e *Env) Settle(ctx context.Context) error {
	return e.Sleep(ctx, e.Timing.SettleDelay)
}

// Sleep waits d, returning early if ctx is cancelled.
func (e *Env) Sleep(ctx context.Context, d time.Duration) error {
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

// SearchRegion returns the named catalog region when it exists, falling back
// to the terminal window bounds. A nil return means "whole display".
func (e *Env) SearchRegion(name string) *image.Rectangle {
	if e.Regions != nil && e.Regions.Has(name) {
		if r, err := e.Regions.Bounds(name); err == nil {
			return &r
		}
	}
	if r, err := e.Window.Bounds(); err == nil {
		return &r
	}
	return nil
}

// Exec wraps the Env for one invocation and collects cleanup steps to run on
// the failure path (clearing a partially filled field before reporting, for
// instance).
type Exec struct {
	*Env
	cleanups []func(context.Context)
}

// Cleanup registers a step to run, most recent first, if the action fails
// after this point. Cleanups are discarded on success.
func (x *Exec) Cleanup(f func(context.Context)) {
	x.cleanups = append(x.cleanups, f)
}

// runCleanups executes registered cleanups in reverse order under their own
// short deadline, so a wedged terminal cannot hang the failure report.
func (x *Exec) runCleanups() {
	if len(x.cleanups) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), x.Timing.SettleDelay+2*time.Second)
	defer cancel()
	for i := len(x.cleanups) - 1; i >= 0; i-- {
		x.cleanups[i](ctx)
	}
	x.cleanups = nil
}
