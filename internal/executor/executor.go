// Package executor sequences primitive input operations into named,
// safety-gated trading actions and reports exactly one structured result per
// request. Every failure is recovered locally into an ActionResult; nothing
// escapes Execute as a fault.
package executor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// EventType distinguishes observer notifications.
type EventType string

const (
	EventActionStarted  EventType = "action_started"
	EventActionFinished EventType = "action_finished"
)

// Event is one observer notification. Result is set on finished events only.
type Event struct {
	Type   EventType             `json:"type"`
	ID     string                `json:"id"`
	Action string                `json:"action"`
	Time   time.Time             `json:"time"`
	Result *schemas.ActionResult `json:"result,omitempty"`
}

// Observer receives action lifecycle events. Observers must be fast; they run
// inline on the execution path.
type Observer func(Event)

// Executor runs one action at a time against the terminal.
type Executor struct {
	reg    *Registry
	env    *Env
	gate   Gate
	log    *zap.Logger
	flight sync.Mutex

	obsMu     sync.RWMutex
	observers []Observer
}

// New builds an executor over a populated registry and environment.
func New(reg *Registry, env *Env, gate Gate, logger *zap.Logger) *Executor {
	return &Executor{reg: reg, env: env, gate: gate, log: logger.Named("executor")}
}

// Subscribe registers an observer for action lifecycle events.
func (e *Executor) Subscribe(obs Observer) {
	e.obsMu.Lock()
	e.observers = append(e.observers, obs)
	e.obsMu.Unlock()
}

func (e *Executor) emit(ev Event) {
	e.obsMu.RLock()
	observers := e.observers
	e.obsMu.RUnlock()
	for _, obs := range observers {
		obs(ev)
	}
}

// Registry exposes the action catalog for discovery endpoints.
func (e *Executor) Registry() *Registry { return e.reg }

// Execute runs one named action end to end: validation, safety gate,
// resolution and execution, then post-condition. A second caller arriving
// while an action is in flight gets an immediate Busy result rather than a
// queue slot; the terminal has one keyboard and one mouse.
func (e *Executor) Execute(ctx context.Context, req schemas.ActionRequest) schemas.ActionResult {
	id := uuid.NewString()
	start := time.Now()

	finish := func(res schemas.ActionResult) schemas.ActionResult {
		res.ID = id
		res.Action = req.Name
		res.Duration = time.Since(start)
		if res.Success {
			e.log.Info("Action finished",
				zap.String("id", id),
				zap.String("action", req.Name),
				zap.Duration("duration", res.Duration))
		} else {
			e.log.Warn("Action failed",
				zap.String("id", id),
				zap.String("action", req.Name),
				zap.String("class", string(res.Error)),
				zap.String("phase", string(res.Phase)),
				zap.String("message", res.Message),
				zap.Duration("duration", res.Duration))
		}
		e.emit(Event{Type: EventActionFinished, ID: id, Action: req.Name, Time: time.Now(), Result: &res})
		return res
	}

	if !e.flight.TryLock() {
		return finish(schemas.Fail(schemas.Errorf(schemas.ClassBusy, schemas.PhaseValidation,
			"another action is already in flight")))
	}
	defer e.flight.Unlock()

	e.emit(Event{Type: EventActionStarted, ID: id, Action: req.Name, Time: start})
	e.log.Info("Action started", zap.String("id", id), zap.String("action", req.Name))

	// -- Phase 1: validation --
	def, ok := e.reg.Get(req.Name)
	if !ok {
		return finish(schemas.Fail(schemas.Errorf(schemas.ClassValidationError, schemas.PhaseValidation,
			"unknown action %q", req.Name)))
	}
	if err := e.env.Window.Ensure(); err != nil {
		return finish(schemas.Fail(err))
	}
	if def.Validate != nil {
		if err := def.Validate(req.Params); err != nil {
			if schemas.ClassOf(err) != schemas.ClassValidationError {
				err = schemas.NewError(schemas.ClassValidationError, schemas.PhaseValidation, err)
			}
			return finish(schemas.Fail(err))
		}
	}

	// -- Phase 2: safety gate, strictly before any side effect --
	if v := e.gate.Check(def, req, e.env.Window.PaperMode()); !v.Allowed {
		return finish(schemas.Fail(schemas.Errorf(schemas.ClassSafetyViolation, schemas.PhaseSafety,
			"%s", v.Reason)))
	}

	// No action may trust a rectangle observed during a previous one, and a
	// prior fail-safe abort must not bleed into this invocation.
	e.env.Resolver.InvalidateCache()
	e.env.Input.Reset()

	// -- Phase 3: resolution + execution --
	return finish(e.run(ctx, def, req))
}

// run executes the action body and post-condition with panic recovery and
// failure-path cleanups.
func (e *Executor) run(ctx context.Context, def Definition, req schemas.ActionRequest) (res schemas.ActionResult) {
	x := &Exec{Env: e.env}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Action panicked",
				zap.String("action", def.Name),
				zap.Any("panic", r),
				zap.Stack("stack"))
			e.env.Input.Abort()
			x.runCleanups()
			res = schemas.Fail(schemas.Errorf(schemas.ClassActionFailed, schemas.PhaseExecution,
				"action panicked: %v", r))
		}
	}()

	message, data, err := def.Run(ctx, x, req.Params)
	if err != nil {
		x.runCleanups()
		return schemas.Fail(withPhase(err, schemas.PhaseExecution))
	}

	// -- Phase 4: post-condition --
	if def.Post != nil {
		postCtx, cancel := context.WithTimeout(ctx, e.env.Timing.PostConditionTimeout)
		err := def.Post(postCtx, x, req.Params)
		cancel()
		if err != nil {
			x.runCleanups()
			return schemas.Fail(asNoConfirmation(err))
		}
	}

	return schemas.OK(message, data)
}

// withPhase stamps a phase onto errors that lack one, preserving existing
// classification.
func withPhase(err error, phase schemas.Phase) error {
	if schemas.PhaseOf(err) != "" {
		return err
	}
	return schemas.NewError(schemas.ClassOf(err), phase, err)
}

// asNoConfirmation maps a missing post-condition element to NoConfirmation:
// the inputs were delivered, the expected follow-up never appeared. Other
// failure classes pass through with the post-condition phase stamped on.
func asNoConfirmation(err error) error {
	class := schemas.ClassOf(err)
	if class == schemas.ClassElementNotFound || class == schemas.ClassTimeout {
		return schemas.NewError(schemas.ClassNoConfirmation, schemas.PhasePostCondition, err)
	}
	return schemas.NewError(class, schemas.PhasePostCondition, err)
}
