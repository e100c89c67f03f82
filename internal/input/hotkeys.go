package input

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/config"
)

// Terminal action identifiers with built-in keyboard shortcuts.
const (
	ActionBuy       = "buy"
	ActionSell      = "sell"
	ActionTransmit  = "transmit"
	ActionCancel    = "cancel"
	ActionCancelAll = "cancel_all"
	ActionSearch    = "search_symbol"
	ActionPortfolio = "portfolio"
	ActionOrders    = "orders"
	ActionRefresh   = "refresh"
)

// Binding is one hotkey definition: modifier set plus main key.
type Binding struct {
	Modifiers   []string
	Key         string
	Description string
}

// Chord renders the binding for logs and uniqueness checks, e.g. "alt+b".
func (b Binding) Chord() string {
	if len(b.Modifiers) == 0 {
		return b.Key
	}
	return strings.Join(b.Modifiers, "+") + "+" + b.Key
}

// defaultBindings are the terminal's documented shortcuts. The terminal's own
// hotkey file is encrypted, so these mirror the vendor documentation and can
// be overridden per deployment through the input.hotkeys config section.
func defaultBindings() map[string]Binding {
	return map[string]Binding{
		ActionBuy:       {Modifiers: []string{"alt"}, Key: "b", Description: "Create buy order"},
		ActionSell:      {Modifiers: []string{"alt"}, Key: "s", Description: "Create sell order"},
		ActionTransmit:  {Modifiers: []string{"alt"}, Key: "t", Description: "Transmit order"},
		ActionCancel:    {Modifiers: []string{"alt"}, Key: "d", Description: "Cancel selected order"},
		ActionCancelAll: {Modifiers: []string{"alt"}, Key: "c", Description: "Cancel all orders"},
		ActionSearch:    {Modifiers: []string{"ctrl"}, Key: "f", Description: "Search for symbol"},
		ActionPortfolio: {Modifiers: []string{"alt"}, Key: "p", Description: "Open portfolio"},
		ActionOrders:    {Modifiers: []string{"alt"}, Key: "o", Description: "Open orders"},
		ActionRefresh:   {Key: "f5", Description: "Refresh data"},
	}
}

// Hotkeys executes terminal actions through their keyboard shortcuts. The
// binding table is assembled once at startup and read-only afterwards.
type Hotkeys struct {
	bindings map[string]Binding
	synth    *Synthesizer
	log      *zap.Logger
}

// NewHotkeys builds the binding table from defaults plus config overrides and
// validates it: every binding needs a key, and no two actions may share a
// chord, otherwise a typo in the config silently fires the wrong action.
func NewHotkeys(synth *Synthesizer, overrides map[string]config.HotkeyOverride, logger *zap.Logger) (*Hotkeys, error) {
	bindings := defaultBindings()

	for id, ov := range overrides {
		bindings[id] = Binding{
			Modifiers:   ov.Modifiers,
			Key:         ov.Key,
			Description: ov.Description,
		}
	}

	chords := make(map[string]string, len(bindings))
	for id, b := range bindings {
		if b.Key == "" {
			return nil, fmt.Errorf("hotkey %q has no key", id)
		}
		chord := b.Chord()
		if other, dup := chords[chord]; dup {
			return nil, fmt.Errorf("hotkey chord %q bound to both %q and %q", chord, other, id)
		}
		chords[chord] = id
	}

	return &Hotkeys{bindings: bindings, synth: synth, log: logger.Named("hotkeys")}, nil
}

// Execute fires the hotkey bound to the given action id.
func (h *Hotkeys) Execute(ctx context.Context, id string) error {
	b, ok := h.bindings[id]
	if !ok {
		return fmt.Errorf("no hotkey bound for action %q", id)
	}
	h.log.Debug("Executing hotkey", zap.String("action", id), zap.String("chord", b.Chord()))

	if len(b.Modifiers) == 0 {
		return h.synth.Press(ctx, b.Key)
	}
	return h.synth.KeyChord(ctx, b.Modifiers, b.Key)
}

// Binding returns the binding for an action id, if one exists.
func (h *Hotkeys) Binding(id string) (Binding, bool) {
	b, ok := h.bindings[id]
	return b, ok
}

// List returns every action id and its chord, sorted by id for stable output.
func (h *Hotkeys) List() map[string]string {
	out := make(map[string]string, len(h.bindings))
	for id, b := range h.bindings {
		out[id] = b.Chord()
	}
	return out
}

// IDs returns the bound action ids in sorted order.
func (h *Hotkeys) IDs() []string {
	ids := make([]string, 0, len(h.bindings))
	for id := range h.bindings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
