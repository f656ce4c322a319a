// Package git provides the small set of git-repository bootstrap operations the
// RPC Dispatcher exposes directly: initialize_git_repo and validate_git_repository
// (spec.md §4.E), grounded in the original implementation's lib.rs.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Vg34100/agent-board/internal/domain"
)

// Initialize runs `git init` at path. Fails if path already has a .git entry.
func Initialize(path string) error {
	if IsRepository(path) {
		return fmt.Errorf("%w: %q already initialized", domain.ErrPathExists, path)
	}
	cmd := exec.Command("git", "init")
	cmd.Dir = path
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: git init: %v: %s", domain.ErrGitOperationFailed, err, string(out))
	}
	return nil
}

// IsRepository reports whether path contains a .git entry.
func IsRepository(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// Validate returns domain.ErrNotGitRepository if path is not a usable repository.
func Validate(path string) error {
	if !IsRepository(path) {
		return fmt.Errorf("%w: %q", domain.ErrNotGitRepository, path)
	}
	return nil
}
