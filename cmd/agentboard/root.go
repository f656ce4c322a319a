// Package main is the entry point for the agentboard CLI.
package main

import (
	"fmt"

	"github.com/Vg34100/agent-board/internal/app"
	"github.com/spf13/cobra"
)

// version is set at build time using -ldflags.
var version = "dev"

// newRootCommand builds the agentboard root command: global --data-dir and
// --debug flags, and the serve/invoke/doctor subcommands.
func newRootCommand() *cobra.Command {
	var dataDir string
	var debug bool

	root := &cobra.Command{
		Use:   "agentboard",
		Short: "Agent Board backend: run AI coding-agent CLIs against git worktrees",
		Long: `agentboard orchestrates AI coding-agent CLI sessions (Claude Code, Codex)
against local git repository worktrees, normalizing their streaming output into
a shared message model and exposing it over HTTP and Server-Sent Events.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "application data directory (default: OS user config dir)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose request/event tracing")

	resolveDataDir := func() (string, error) {
		if dataDir != "" {
			return dataDir, nil
		}
		return app.DefaultDataDir()
	}

	root.AddCommand(newServeCommand(resolveDataDir, &debug))
	root.AddCommand(newInvokeCommand(resolveDataDir, &debug))
	root.AddCommand(newDoctorCommand(resolveDataDir, &debug))

	return root
}

func buildContainer(resolveDataDir func() (string, error), debug bool) (*app.Container, error) {
	dir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}
	return app.New(dir, debug)
}
