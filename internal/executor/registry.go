package executor

import (
	"context"
	"fmt"
	"sort"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// RunFunc is one action's implementation. It returns the success message and
// optional structured payload; any error fails the action.
type RunFunc func(ctx context.Context, x *Exec, p schemas.Params) (string, any, error)

// PostFunc verifies an action's post-condition, re-resolving the expected
// follow-up element. An ElementNotFound from a post check is reported to the
// caller as NoConfirmation.
type PostFunc func(ctx context.Context, x *Exec, p schemas.Params) error

// Definition describes one registered action.
type Definition struct {
	Name string
	Kind schemas.ActionKind
	// Transmits marks actions that submit an order to the market, which the
	// gate may require explicit confirmation for.
	Transmits bool
	Summary   string
	// ParamHints documents the accepted parameters for discovery endpoints.
	ParamHints map[string]string
	Validate   func(p schemas.Params) error
	Run        RunFunc
	Post       PostFunc
}

// Registry is the action catalog. It is populated once at startup and
// read-only afterwards.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry returns an empty catalog.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition, rejecting duplicates and incomplete entries.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("action definition has no name")
	}
	if def.Run == nil {
		return fmt.Errorf("action %q has no run function", def.Name)
	}
	if _, dup := r.defs[def.Name]; dup {
		return fmt.Errorf("action %q registered twice", def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// MustRegister is Register for static catalogs built at startup.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Get looks up a definition by name.
func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// List returns every definition sorted by name.
func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
