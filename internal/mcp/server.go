// Package mcp hosts the agent-facing boundary of the automation core: an
// HTTP command endpoint, an action catalog, and a websocket event stream.
// It is also the composition root that wires screen capture, recognition,
// input synthesis, window bookkeeping, and the executor together.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/deskpilot/internal/config"
	"github.com/xkilldash9x/deskpilot/internal/executor"
	"github.com/xkilldash9x/deskpilot/internal/input"
	"github.com/xkilldash9x/deskpilot/internal/observability"
	"github.com/xkilldash9x/deskpilot/internal/recog"
	"github.com/xkilldash9x/deskpilot/internal/resolve"
	"github.com/xkilldash9x/deskpilot/internal/screen"
	"github.com/xkilldash9x/deskpilot/internal/window"
)

// Server hosts the automation core behind an HTTP boundary.
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	exec       *executor.Executor
	manager    *window.Manager
	hub        *hub
	handlers   *Handlers
	httpServer *http.Server
}

// Core is the fully wired automation pipeline, independent of any boundary.
// Both the HTTP server and the one-shot CLI commands run actions through it.
type Core struct {
	Exec    *executor.Executor
	Manager *window.Manager
	Hotkeys *input.Hotkeys
}

// NewCore wires screen capture, recognition, input, window bookkeeping, the
// resolver, and the executor from configuration. The terminal window is not
// attached yet; callers do that so construction stays side-effect free.
func NewCore(cfg *config.Config, logger *zap.Logger) (*Core, error) {
	capturer, err := screen.NewCapturer(cfg.Screen, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing screen capture: %w", err)
	}

	display := capturer.DisplayBounds()
	scale := 1.0
	if cfg.Screen.BaseWidth > 0 {
		scale = float64(display.Dx()) / float64(cfg.Screen.BaseWidth)
	}

	engine := recog.NewEngine(cfg.Screen.TemplateDir, scale, cfg.Resolver.OCRConfidence, logger)

	regions, err := screen.LoadCatalog(cfg.Screen.RegionsFile, cfg.Screen.BaseWidth, cfg.Screen.BaseHeight, display)
	if err != nil {
		return nil, fmt.Errorf("loading region catalog: %w", err)
	}

	manager := window.NewManager(cfg.Terminal, logger)
	synth := input.NewSynthesizer(input.NewDriver(), cfg.Input, cfg.Safety, display, logger)
	hotkeys, err := input.NewHotkeys(synth, cfg.Input.Hotkeys, logger)
	if err != nil {
		return nil, fmt.Errorf("building hotkey table: %w", err)
	}

	resolver := resolve.NewResolver(cfg.Resolver.Order, cfg.Timing, logger)
	resolve.NewStrategies(capturer, engine, nil, cfg.Resolver, logger).RegisterAll(resolver)

	env := &executor.Env{
		Resolver: resolver,
		Input:    synth,
		Hotkeys:  hotkeys,
		Screen:   capturer,
		Recog:    engine,
		Regions:  regions,
		Window:   manager,
		Timing:   cfg.Timing,
		Log:      logger,
	}
	exec := executor.New(executor.DefaultRegistry(), env, executor.NewGate(cfg.Safety), logger)

	return &Core{Exec: exec, Manager: manager, Hotkeys: hotkeys}, nil
}

// NewServer wires the full pipeline and its HTTP boundary.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	core, err := NewCore(cfg, logger)
	if err != nil {
		return nil, err
	}

	h := newHub(logger)
	core.Exec.Subscribe(h.publish)

	s := &Server{
		cfg:      cfg,
		logger:   logger.Named("mcp"),
		exec:     core.Exec,
		manager:  core.Manager,
		hub:      h,
		handlers: NewHandlers(core.Exec, core.Manager, logger),
	}
	return s, nil
}

// Start attaches to the terminal, then serves until the context is cancelled
// or a termination signal arrives.
func (s *Server) Start(ctx context.Context) error {
	defer observability.Sync()

	attachCtx, cancel := context.WithTimeout(ctx, s.cfg.Terminal.AttachTimeout+time.Second)
	err := s.manager.Attach(attachCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("attaching to terminal: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/ws/v1/events", s.hub.handleWS)
	r.Group(func(r chi.Router) {
		s.handlers.RegisterRoutes(r)
	})

	s.httpServer = &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Server listening", zap.String("address", s.cfg.Server.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		s.hub.run(gctx)
		return nil
	})

	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			s.logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
		case <-gctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
