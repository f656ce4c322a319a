// Package agentrunner implements the Agent Runner (spec.md §4.D): spawning and
// supervising external agent CLI child processes, parsing their heterogeneous
// streaming stdout into the normalized AgentMessage model, reconstructing
// multi-turn context across successive invocations, and persisting the
// resulting conversation and process history through the Document Store and
// Event Bus.
//
// Grounded primarily on original_source/src-tauri/src/agent.rs: the
// spawn_claude_process/spawn_codex_process command-candidate probing,
// parse_claude_output/parse_codex_output discriminator tables, the
// split_json_objects brace-counting line splitter, and
// send_message_to_process's context-reconstruction-by-respawning design. The
// goroutine/channel supervision shape is grounded in
// runoshun-crew/internal/usecase/acp_run.go's select loop over
// prompt/cancel/stop/process-exit channels, adapted to supervise a raw
// exec.Cmd instead of an ACP connection.
package agentrunner

import (
	"fmt"

	"github.com/Vg34100/agent-board/internal/domain"
)

// Dialect identifies which output parser a profile's child process speaks.
type Dialect string

const (
	DialectClaude Dialect = "claude"
	DialectCodex  Dialect = "codex"
)

// CommandSpec is one candidate invocation for a profile: either a bare
// command (resolved on PATH) or, when Shell is set, a command that must be
// invoked through a shell wrapper (mirrors the original's special-case
// handling of claude.cmd/codex.cmd, which Windows requires launching via
// `cmd /C` to avoid argument-escaping issues).
type CommandSpec struct {
	// Program is the executable to resolve (e.g. "claude", "npx").
	Program string
	// Args are args always passed ahead of the invocation-specific ones
	// (e.g. []string{"@openai/codex", "exec"} for the npx candidate).
	Args []string
	// Shell, if non-empty, names a shell to invoke Program through (e.g.
	// "cmd" with "/C" prepended) instead of exec'ing Program directly.
	Shell string
}

// Profile is a recipe for invoking one agent CLI: its ordered command
// candidates, how to build argv for an initial run vs. a reply, and which
// output dialect to parse its stdout with.
type Profile struct {
	Name       domain.Profile
	Dialect    Dialect
	Candidates []CommandSpec
}

// claudeCandidates mirrors spawn_claude_process's ["claude", "claude.exe",
// "claude.cmd"] probe order; claude.cmd is special-cased to invoke through
// cmd.exe, per the original's comment about Rust's .cmd escaping guard.
var claudeCandidates = []CommandSpec{
	{Program: "claude"},
	{Program: "claude.exe"},
	{Program: "claude.cmd", Shell: "cmd"},
}

// codexCandidates mirrors spawn_codex_process's three-tier resolution:
// codex.cmd via cmd.exe first, then npx @openai/codex exec, then a bare
// codex/codex.exe binary.
var codexCandidates = []CommandSpec{
	{Program: "codex.cmd", Shell: "cmd"},
	{Program: "npx", Args: []string{"-y", "@openai/codex"}},
	{Program: "codex"},
	{Program: "codex.exe"},
}

// BuiltinProfiles returns the two profiles supported out of the box. Catalog
// overrides (see catalog.go) may extend either profile's Candidates.
func BuiltinProfiles() map[domain.Profile]Profile {
	return map[domain.Profile]Profile{
		domain.ProfileClaude: {
			Name:       domain.ProfileClaude,
			Dialect:    DialectClaude,
			Candidates: append([]CommandSpec(nil), claudeCandidates...),
		},
		domain.ProfileCodex: {
			Name:       domain.ProfileCodex,
			Dialect:    DialectCodex,
			Candidates: append([]CommandSpec(nil), codexCandidates...),
		},
	}
}

// resolvedCommand is one profile candidate that has successfully resolved to
// a runnable command, ready to have invocation-specific args appended.
type resolvedCommand struct {
	spec CommandSpec
}

// argv renders the resolved command plus invocation-specific extraArgs into a
// (program, args) pair ready for exec.Command.
func (r resolvedCommand) argv(extraArgs []string) (string, []string) {
	args := append([]string(nil), r.spec.Args...)
	args = append(args, extraArgs...)
	if r.spec.Shell != "" {
		shellArgs := append([]string{"/C", r.spec.Program}, args...)
		return r.spec.Shell, shellArgs
	}
	return r.spec.Program, args
}

// String renders a human-readable description of the candidate, for error
// messages.
func (r resolvedCommand) String() string {
	if r.spec.Shell != "" {
		return fmt.Sprintf("%s (via %s)", r.spec.Program, r.spec.Shell)
	}
	return r.spec.Program
}
