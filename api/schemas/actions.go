package schemas

import (
	"fmt"
	"strconv"
	"time"
)

// -- Action Schemas --

// Phase names the stage of execution a failure occurred in.
type Phase string

const (
	PhaseValidation    Phase = "validation"
	PhaseSafety        Phase = "safety"
	PhaseResolution    Phase = "resolution"
	PhaseExecution     Phase = "execution"
	PhasePostCondition Phase = "post-condition"
)

// ActionKind classifies what an action touches. The safety gate only examines
// order-affecting actions.
type ActionKind string

const (
	// KindRead actions only observe the screen.
	KindRead ActionKind = "read"
	// KindNavigate actions move focus or open panels but cannot place orders.
	KindNavigate ActionKind = "navigate"
	// KindOrder actions create, modify, transmit or cancel orders.
	KindOrder ActionKind = "order"
)

// Params is the parameter mapping of an ActionRequest. The typed getters
// tolerate the loose types that arrive from JSON boundaries (float64 for
// every number, for instance).
type Params map[string]any

// String returns the named parameter as a string, or def when absent.
func (p Params) String(key, def string) string {
	v, ok := p[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the named parameter as an int, or def when absent or unparseable.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Float returns the named parameter as a float64, or def when absent or unparseable.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Bool returns the named parameter as a bool, or def when absent.
func (p Params) Bool(key string, def bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Has reports whether the parameter is present at all.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// ActionRequest names a high-level action plus its parameters. Validated
// before execution; exactly one ActionResult corresponds to each request.
type ActionRequest struct {
	Name   string `json:"name"`
	Params Params `json:"params,omitempty"`
}

// ActionResult is the terminal, immutable outcome record of one action
// invocation. It is the single source of truth for success or failure; the
// calling boundary translates it into whatever envelope its protocol needs.
type ActionResult struct {
	// ID is the per-invocation identifier, unique across the process lifetime.
	ID string `json:"id"`
	// Action echoes the requested action name.
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	// Data carries free-form structured payload, e.g. a parsed portfolio table.
	Data any `json:"data,omitempty"`
	// Error is the classification for failed results, empty on success.
	Error ErrorClass `json:"error,omitempty"`
	// Phase records where in the pipeline a failure occurred.
	Phase Phase `json:"phase,omitempty"`
	// Duration is the elapsed wall-clock time of the invocation. Resolver
	// retries are visible here, never as extra results.
	Duration time.Duration `json:"duration"`
}

// OK builds a successful result.
func OK(message string, data any) ActionResult {
	return ActionResult{Success: true, Message: message, Data: data}
}

// Fail builds a failed result from a classified error.
func Fail(err error) ActionResult {
	return ActionResult{
		Success: false,
		Message: err.Error(),
		Error:   ClassOf(err),
		Phase:   PhaseOf(err),
	}
}
