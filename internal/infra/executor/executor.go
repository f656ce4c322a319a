// Package executor runs external commands on behalf of the Worktree Manager: its
// git worktree operations and its folder/IDE opener probes.
package executor

import (
	"context"
	"io"
	"os/exec"

	"github.com/Vg34100/agent-board/internal/domain"
)

// Client implements domain.CommandExecutor.
type Client struct{}

// NewClient creates a command executor client.
func NewClient() *Client {
	return &Client{}
}

var _ domain.CommandExecutor = (*Client)(nil)

// Execute runs program to completion and returns its combined output.
func (c *Client) Execute(program, dir string, args ...string) ([]byte, error) {
	// #nosec G204 - program and args come from trusted internal code, never raw user input
	cmd := exec.Command(program, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	return cmd.CombinedOutput()
}

// ExecuteWithContext runs program to completion, cancellable via ctx, streaming
// stdout/stderr to the given writers.
func (c *Client) ExecuteWithContext(ctx context.Context, program, dir string, stdout, stderr io.Writer, args ...string) error {
	// #nosec G204 - program and args come from trusted internal code, never raw user input
	cmd := exec.CommandContext(ctx, program, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}
