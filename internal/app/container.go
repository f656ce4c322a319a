// Package app provides the dependency injection container wiring Agent
// Board's ports to their concrete adapters, constructed once at process
// startup and threaded through to the CLI subcommands.
//
// Grounded on the teacher's internal/app/container.go: a Container struct
// holding port interfaces plus a logger and resolved paths, a New(dir)
// factory, and accessor methods for the application's top-level components.
// Rebuilt here for Agent Board's component set — Document Store, Event Bus,
// Worktree Manager, Agent Runner, RPC Dispatcher, HTTP Gateway — since none
// of the teacher's git-crew ports (TaskRepository, SessionManager, ...)
// survive into this domain.
package app

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Vg34100/agent-board/internal/agentrunner"
	"github.com/Vg34100/agent-board/internal/dispatcher"
	"github.com/Vg34100/agent-board/internal/domain"
	"github.com/Vg34100/agent-board/internal/eventbus"
	"github.com/Vg34100/agent-board/internal/gateway"
	"github.com/Vg34100/agent-board/internal/infra/config"
	"github.com/Vg34100/agent-board/internal/infra/executor"
	"github.com/Vg34100/agent-board/internal/infra/logging"
	"github.com/Vg34100/agent-board/internal/infra/store"
	"github.com/Vg34100/agent-board/internal/infra/worktree"
)

// Container holds every port implementation and top-level component Agent
// Board needs, built once from a resolved data directory.
type Container struct {
	Config *config.Config

	Store     domain.Store
	Bus       domain.EventBus
	Worktrees domain.WorktreeManager
	Runner    *agentrunner.Runner
	Logger    domain.Logger

	Dispatcher *dispatcher.Dispatcher
	Gateway    *gateway.Gateway

	DataDir string
}

// New resolves dataDir (creating it if absent), loads its optional
// config.toml, and wires every component against it.
func New(dataDir string, debug bool) (*Container, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, err
	}

	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Debug = true
	}
	if os.Getenv("AGENT_BOARD_DEBUG") == "1" {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(os.Stderr, level)

	s := store.New(dataDir)
	bus := eventbus.New()

	worktreesRoot := filepath.Join(dataDir, "worktrees")
	worktreeClient := worktree.NewClient(worktreesRoot, executor.NewClient())

	profiles := agentrunner.BuiltinProfiles()
	if loaded, err := agentrunner.LoadCatalog(dataDir, profiles); err == nil {
		profiles = loaded
	} else {
		logger.Warn("app", "agent catalog load failed, using built-in profiles only", "error", err)
	}

	runner := agentrunner.New(s, bus, domain.RealClock{}, logger, profiles)
	runner.SetDebug(cfg.Debug)

	d := dispatcher.New(dispatcher.Services{
		Store:     s,
		Worktrees: worktreeClient,
		Runner:    runner,
		Clock:     domain.RealClock{},
	})

	gw := gateway.New(d, bus, logger, cfg.Debug, cfg.LogAllow)

	return &Container{
		Config:     cfg,
		Store:      s,
		Bus:        bus,
		Worktrees:  worktreeClient,
		Runner:     runner,
		Logger:     logger,
		Dispatcher: d,
		Gateway:    gw,
		DataDir:    dataDir,
	}, nil
}

// DefaultDataDir returns the application data directory used when
// --data-dir isn't given: <user config dir>/agent-board.
func DefaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "agent-board"), nil
}
