package input

import (
	"github.com/go-vgo/robotgo"
)

// Driver is the seam between the synthesizer and the OS input facility. Tests
// substitute a recording implementation; production uses robotgo.
type Driver interface {
	MoveMouse(x, y int)
	Click(button string, double bool)
	// Toggle presses ("down") or releases ("up") a key.
	Toggle(key, direction string) error
	// Tap presses and releases a key, optionally while holding modifiers.
	Tap(key string, modifiers ...string) error
	// TypeStr enters a string of literal characters.
	TypeStr(s string)
	// Location reports the current pointer position.
	Location() (x, y int)
}

// robotDriver delivers input through robotgo.
type robotDriver struct{}

// NewDriver returns the production input driver.
func NewDriver() Driver { return robotDriver{} }

func (robotDriver) MoveMouse(x, y int) {
	robotgo.MoveMouse(x, y)
}

func (robotDriver) Click(button string, double bool) {
	robotgo.MouseClick(button, double)
}

func (robotDriver) Toggle(key, direction string) error {
	return robotgo.KeyToggle(key, direction)
}

func (robotDriver) Tap(key string, modifiers ...string) error {
	args := make([]interface{}, len(modifiers))
	for i, m := range modifiers {
		args[i] = m
	}
	return robotgo.KeyTap(key, args...)
}

func (robotDriver) TypeStr(s string) {
	robotgo.TypeStr(s)
}

func (robotDriver) Location() (int, int) {
	return robotgo.Location()
}
