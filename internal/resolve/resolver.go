// Package resolve turns abstract element specs into concrete screen
// rectangles. A resolver holds a registry of lookup strategies and walks them
// in the configured order; callers choose between a single chain pass and a
// polling resolve that keeps re-capturing until the element appears or the
// chain timeout elapses.
package resolve

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/config"
)

// Finder is one element-lookup mechanism. It returns every candidate match it
// can see right now; the resolver picks the winner. A Finder must be safe for
// concurrent use and must honor ctx.
type Finder func(ctx context.Context, spec schemas.ElementSpec) ([]schemas.ResolvedElement, error)

// Resolver walks registered strategies in a configured order.
type Resolver struct {
	order  []schemas.Strategy
	timing config.TimingConfig
	log    *zap.Logger

	mu      sync.RWMutex
	finders map[schemas.Strategy]Finder

	cacheMu sync.Mutex
	cache   map[string]schemas.ResolvedElement
}

// NewResolver builds a resolver with no strategies registered. The order
// slice is the hybrid fallback chain; strategies absent from it are reachable
// only by pinning.
func NewResolver(order []schemas.Strategy, timing config.TimingConfig, logger *zap.Logger) *Resolver {
	return &Resolver{
		order:   append([]schemas.Strategy(nil), order...),
		timing:  timing,
		log:     logger.Named("resolver"),
		finders: make(map[schemas.Strategy]Finder),
		cache:   make(map[string]schemas.ResolvedElement),
	}
}

// RegisterStrategy installs or replaces the finder for a strategy.
func (r *Resolver) RegisterStrategy(s schemas.Strategy, f Finder) {
	r.mu.Lock()
	r.finders[s] = f
	r.mu.Unlock()
}

// InvalidateCache drops every cached resolution. The executor calls this at
// the start of each top-level action so no action trusts a rectangle observed
// during a previous one.
func (r *Resolver) InvalidateCache() {
	r.cacheMu.Lock()
	r.cache = make(map[string]schemas.ResolvedElement)
	r.cacheMu.Unlock()
}

// chain returns the strategies a spec consults: the pinned one, or the full
// configured order for hybrid (and unset) specs.
func (r *Resolver) chain(spec schemas.ElementSpec) []schemas.Strategy {
	if spec.Strategy != "" && spec.Strategy != schemas.StrategyHybrid {
		return []schemas.Strategy{spec.Strategy}
	}
	return r.order
}

// Resolve performs a single pass over the spec's strategy chain. Each attempt
// runs under its own sub-timeout; an attempt error advances the chain rather
// than failing the pass. A pass with no winner is ElementNotFound.
func (r *Resolver) Resolve(ctx context.Context, spec schemas.ElementSpec) (schemas.ResolvedElement, error) {
	key := spec.Key()
	r.cacheMu.Lock()
	cached, hit := r.cache[key]
	r.cacheMu.Unlock()
	if hit {
		r.log.Debug("Resolution cache hit", zap.String("spec", spec.String()))
		return cached, nil
	}

	el, err := r.resolveOnce(ctx, spec)
	if err != nil {
		return schemas.ResolvedElement{}, err
	}

	r.cacheMu.Lock()
	r.cache[key] = el
	r.cacheMu.Unlock()
	return el, nil
}

func (r *Resolver) resolveOnce(ctx context.Context, spec schemas.ElementSpec) (schemas.ResolvedElement, error) {
	var lastErr error
	for _, strategy := range r.chain(spec) {
		if err := ctx.Err(); err != nil {
			return schemas.ResolvedElement{}, schemas.NewError(schemas.ClassTimeout, schemas.PhaseResolution, err)
		}

		r.mu.RLock()
		finder, ok := r.finders[strategy]
		r.mu.RUnlock()
		if !ok {
			lastErr = fmt.Errorf("strategy %q not registered", strategy)
			continue
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.timing.StrategyTimeout)
		candidates, err := finder(attemptCtx, spec)
		cancel()
		if err != nil {
			r.log.Debug("Strategy attempt failed",
				zap.String("strategy", string(strategy)),
				zap.String("spec", spec.String()),
				zap.Error(err))
			lastErr = err
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		el := pickBest(candidates)
		el.Strategy = strategy
		el.ResolvedAt = time.Now()
		r.log.Debug("Element resolved",
			zap.String("strategy", string(strategy)),
			zap.String("spec", spec.String()),
			zap.Float64("confidence", el.Confidence))
		return el, nil
	}

	return schemas.ResolvedElement{}, schemas.Errorf(schemas.ClassElementNotFound, schemas.PhaseResolution,
		"no strategy located %s (last error: %v)", spec, lastErr)
}

// ResolveWithRetry polls Resolve until the element appears, the chain timeout
// elapses (ElementNotFound), or the caller's ctx expires first (Timeout).
// Every pass starts from fresh captures; nothing is reused between polls.
func (r *Resolver) ResolveWithRetry(ctx context.Context, spec schemas.ElementSpec) (schemas.ResolvedElement, error) {
	deadline := time.Now().Add(r.timing.ChainTimeout)

	for {
		el, err := r.Resolve(ctx, spec)
		if err == nil {
			return el, nil
		}
		if schemas.ClassOf(err) != schemas.ClassElementNotFound {
			return schemas.ResolvedElement{}, err
		}

		if time.Now().After(deadline) {
			return schemas.ResolvedElement{}, schemas.Errorf(schemas.ClassElementNotFound, schemas.PhaseResolution,
				"%s not found within %s", spec, r.timing.ChainTimeout)
		}
		select {
		case <-ctx.Done():
			return schemas.ResolvedElement{}, schemas.NewError(schemas.ClassTimeout, schemas.PhaseResolution, ctx.Err())
		case <-time.After(r.timing.PollInterval):
		}
	}
}

// pickBest applies the deterministic tie-break: highest confidence first,
// then top-most, then left-most. Equal inputs always produce the same winner.
func pickBest(candidates []schemas.ResolvedElement) schemas.ResolvedElement {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
			continue
		}
		if c.Confidence < best.Confidence {
			continue
		}
		if c.Rect.Min.Y < best.Rect.Min.Y ||
			(c.Rect.Min.Y == best.Rect.Min.Y && c.Rect.Min.X < best.Rect.Min.X) {
			best = c
		}
	}
	return best
}
