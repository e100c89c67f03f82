package mcp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/executor"
	"github.com/xkilldash9x/deskpilot/internal/window"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CommandRequest is the envelope for POST /api/v1/command.
type CommandRequest struct {
	Command string         `json:"command"`
	Params  schemas.Params `json:"params,omitempty"`
}

// actionInfo is one catalog entry in GET /api/v1/actions.
type actionInfo struct {
	Name    string             `json:"name"`
	Kind    schemas.ActionKind `json:"kind"`
	Summary string             `json:"summary,omitempty"`
	Params  map[string]string  `json:"params,omitempty"`
}

// Handlers serves the HTTP API over the executor.
type Handlers struct {
	exec    *executor.Executor
	manager *window.Manager
	log     *zap.Logger
}

// NewHandlers builds the HTTP handler set.
func NewHandlers(exec *executor.Executor, manager *window.Manager, logger *zap.Logger) *Handlers {
	return &Handlers{exec: exec, manager: manager, log: logger.Named("handlers")}
}

// RegisterRoutes mounts the API on the router.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/command", h.HandleCommand)
		r.Get("/actions", h.HandleActions)
	})
}

// HandleHealth reports liveness plus whether the terminal window is still
// attached, so an orchestrator can tell "server up" from "terminal gone".
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"connected": h.manager.IsReady(),
	})
}

// HandleCommand executes one action and returns its ActionResult verbatim.
// The result is the single source of truth: HTTP status reflects transport
// problems only, never action failure.
func (h *Handlers) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Command == "" {
		h.respondError(w, http.StatusBadRequest, "command is required")
		return
	}

	h.log.Info("Command received", zap.String("command", req.Command))
	result := h.exec.Execute(r.Context(), schemas.ActionRequest{
		Name:   req.Command,
		Params: req.Params,
	})
	h.respond(w, http.StatusOK, result)
}

// HandleActions lists the registered action catalog.
func (h *Handlers) HandleActions(w http.ResponseWriter, r *http.Request) {
	defs := h.exec.Registry().List()
	out := make([]actionInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, actionInfo{
			Name:    def.Name,
			Kind:    def.Kind,
			Summary: def.Summary,
			Params:  def.ParamHints,
		})
	}
	h.respond(w, http.StatusOK, map[string]any{"actions": out})
}

func (h *Handlers) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respond(w, status, map[string]string{"error": message})
}
