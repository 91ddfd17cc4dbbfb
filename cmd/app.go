package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guilhermegouw/aurora/internal/chat"
	"github.com/guilhermegouw/aurora/internal/config"
	"github.com/guilhermegouw/aurora/internal/debug"
	"github.com/guilhermegouw/aurora/internal/gateway"
	"github.com/guilhermegouw/aurora/internal/history"
	"github.com/guilhermegouw/aurora/internal/kv"
	"github.com/guilhermegouw/aurora/internal/provider"
	"github.com/guilhermegouw/aurora/internal/pubsub"
)

// offlineChunkDelay paces the echo gateway so streaming stays visible.
const offlineChunkDelay = 30 * time.Millisecond

// app is everything a command needs to run turns and read history.
type app struct { //nolint:govet // fieldalignment: preserving logical field order
	cfg     *config.Config
	backend kv.Store
	store   *history.Store
	hub     *pubsub.Hub
	ctrl    *chat.Controller

	debugPath string
}

// openApp loads configuration and wires storage, gateway and controller
// from the root flags. The saved history is loaded before it returns.
func openApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a := &app{cfg: cfg}

	debugMode, err := flags.GetBool("debug")
	if err != nil {
		return nil, fmt.Errorf("getting debug flag: %w", err)
	}
	if debugMode || cfg.Options.Debug {
		path := cfg.DebugLogPath()
		if debugErr := debug.Enable(path); debugErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to enable debug logging: %v\n", debugErr)
		} else {
			a.debugPath = path
		}
	}
	logger := debug.Logger()

	backend, err := flags.GetString("storage")
	if err != nil {
		return nil, fmt.Errorf("getting storage flag: %w", err)
	}
	if backend == "" {
		backend = cfg.Options.Storage
	}
	a.backend, err = kv.Open(backend, cfg.DataDir())
	if err != nil {
		debug.Disable()
		return nil, fmt.Errorf("opening %s storage: %w", backendName(backend), err)
	}
	a.store = history.NewStore(a.backend, logger)

	gw, err := newGateway(cmd, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.hub = pubsub.NewHub()
	a.ctrl = chat.NewController(chat.Config{
		Gateway: gw,
		Store:   a.store,
		Hub:     a.hub,
		Logger:  logger,
	})
	a.ctrl.Load(contextOf(cmd))

	logger.Info("aurora started",
		zap.String("storage", backendName(backend)),
		zap.String("data_dir", cfg.DataDir()),
	)
	return a, nil
}

// Close releases storage and stops the brokers.
func (a *app) Close() {
	if a.hub != nil {
		a.hub.Shutdown()
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			debug.Error("app", err, "closing storage")
		}
	}
	debug.Disable()
}

func newGateway(cmd *cobra.Command, cfg *config.Config) (gateway.Gateway, error) {
	offline, err := cmd.Flags().GetBool("offline")
	if err != nil {
		return nil, fmt.Errorf("getting offline flag: %w", err)
	}
	if offline {
		return &gateway.Mock{ChunkDelay: offlineChunkDelay}, nil
	}

	prompt := cfg.Options.SystemPrompt
	if prompt == "" {
		prompt = gateway.DefaultSystemPrompt(cfg.Options.AppName)
	}
	builder := provider.NewBuilder(cfg)
	return gateway.NewClient(builder, builder.ImageGenerator(), prompt), nil
}

// backendName names the backend for messages without leaking credentials
// from a Redis URL.
func backendName(backend string) string {
	switch {
	case backend == "":
		return kv.BackendSQLite
	case kv.IsRedisURL(backend):
		return "redis"
	default:
		return backend
	}
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
