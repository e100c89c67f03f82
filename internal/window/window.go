// Package window attaches to the trading terminal's main window and keeps
// track of it for the lifetime of a session. Every action assumes the
// terminal is present; a lost window is the one condition that downgrades
// the whole session to NotConnected.
package window

import (
	"context"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/config"
)

// attachPollInterval is the sleep between attach attempts while waiting for
// the terminal to come up.
const attachPollInterval = 500 * time.Millisecond

// probe is the seam between the manager and the OS window facility. Tests
// substitute a scripted implementation; production uses robotgo.
type probe interface {
	// FindPids lists process ids whose name contains the given string.
	FindPids(name string) ([]int32, error)
	// Title reports the window title for a process id.
	Title(pid int32) string
	// Bounds reports the window rectangle for a process id.
	Bounds(pid int32) (x, y, w, h int)
	// Activate raises the window and gives it keyboard focus.
	Activate(pid int32) error
}

type robotProbe struct{}

func (robotProbe) FindPids(name string) ([]int32, error) {
	ids, err := robotgo.FindIds(name)
	if err != nil {
		return nil, err
	}
	pids := make([]int32, len(ids))
	for i, id := range ids {
		pids[i] = int32(id)
	}
	return pids, nil
}
func (robotProbe) Title(pid int32) string                { return robotgo.GetTitle(int(pid)) }
func (robotProbe) Bounds(pid int32) (int, int, int, int) { return robotgo.GetBounds(int(pid)) }
func (robotProbe) Activate(pid int32) error              { return robotgo.ActivePid(int(pid)) }

// Manager tracks the attached terminal window.
type Manager struct {
	cfg config.TerminalConfig
	prb probe
	log *zap.Logger

	mu  sync.Mutex
	pid int32
	ok  bool
}

// NewManager builds an unattached manager. Call Attach before using it.
func NewManager(cfg config.TerminalConfig, logger *zap.Logger) *Manager {
	return newManager(cfg, robotProbe{}, logger)
}

func newManager(cfg config.TerminalConfig, prb probe, logger *zap.Logger) *Manager {
	return &Manager{cfg: cfg, prb: prb, log: logger.Named("window")}
}

// Attach locates the terminal window, polling until it appears or the attach
// timeout elapses. It must succeed before any action can run.
func (m *Manager) Attach(ctx context.Context) error {
	deadline := time.Now().Add(m.cfg.AttachTimeout)

	for {
		pid, found := m.locate()
		if found {
			m.mu.Lock()
			m.pid = pid
			m.ok = true
			m.mu.Unlock()
			m.log.Info("Attached to terminal window",
				zap.Int32("pid", pid),
				zap.String("title", m.prb.Title(pid)))
			return nil
		}

		if time.Now().After(deadline) {
			return schemas.Errorf(schemas.ClassNotConnected, schemas.PhaseValidation,
				"terminal window %q not found within %s", m.cfg.TitlePattern, m.cfg.AttachTimeout)
		}
		select {
		case <-ctx.Done():
			return schemas.NewError(schemas.ClassNotConnected, schemas.PhaseValidation, ctx.Err())
		case <-time.After(attachPollInterval):
		}
	}
}

// locate scans candidate processes for a window whose title contains the
// configured pattern. With a process name configured the scan is narrowed to
// that executable, otherwise every process is considered.
func (m *Manager) locate() (int32, bool) {
	pids, err := m.prb.FindPids(m.cfg.ProcessName)
	if err != nil {
		m.log.Debug("Process scan failed", zap.Error(err))
		return 0, false
	}
	want := strings.ToLower(m.cfg.TitlePattern)
	for _, pid := range pids {
		title := m.prb.Title(pid)
		if title == "" {
			continue
		}
		if want == "" || strings.Contains(strings.ToLower(title), want) {
			return pid, true
		}
	}
	return 0, false
}

// IsReady reports whether the attached window still exists. A window that
// vanished (terminal crashed or was closed) flips the manager back to
// unattached.
func (m *Manager) IsReady() bool {
	m.mu.Lock()
	pid, ok := m.pid, m.ok
	m.mu.Unlock()
	if !ok {
		return false
	}
	if m.prb.Title(pid) == "" {
		m.log.Warn("Terminal window lost", zap.Int32("pid", pid))
		m.mu.Lock()
		m.ok = false
		m.mu.Unlock()
		return false
	}
	return true
}

// Ensure returns a NotConnected error unless the terminal window is present.
func (m *Manager) Ensure() error {
	if !m.IsReady() {
		return schemas.Errorf(schemas.ClassNotConnected, schemas.PhaseValidation,
			"terminal window is not attached")
	}
	return nil
}

// Bounds returns the terminal window rectangle in screen coordinates.
func (m *Manager) Bounds() (image.Rectangle, error) {
	if err := m.Ensure(); err != nil {
		return image.Rectangle{}, err
	}
	m.mu.Lock()
	pid := m.pid
	m.mu.Unlock()
	x, y, w, h := m.prb.Bounds(pid)
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, schemas.Errorf(schemas.ClassNotConnected, schemas.PhaseValidation,
			"terminal window has degenerate bounds %dx%d", w, h)
	}
	return image.Rect(x, y, x+w, y+h), nil
}

// PaperMode reports whether the attached session is a paper-trading one. The
// terminal brands simulated sessions in the window title, which is the only
// signal available from outside the process.
func (m *Manager) PaperMode() bool {
	m.mu.Lock()
	pid, ok := m.pid, m.ok
	m.mu.Unlock()
	if !ok {
		return false
	}
	title := strings.ToLower(m.prb.Title(pid))
	return strings.Contains(title, "paper") || strings.Contains(title, "simulated")
}

// Activate raises the terminal window so synthesized input lands in it.
func (m *Manager) Activate() error {
	if err := m.Ensure(); err != nil {
		return err
	}
	m.mu.Lock()
	pid := m.pid
	m.mu.Unlock()
	if err := m.prb.Activate(pid); err != nil {
		return schemas.Errorf(schemas.ClassNotConnected, schemas.PhaseValidation,
			"activating terminal window: %v", err)
	}
	return nil
}
