// Package worktree implements the Worktree Manager (spec.md §4.C): creating and
// tearing down per-task branches and worktrees against real git repositories.
package worktree

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/Vg34100/agent-board/internal/domain"
)

// ideCandidates is the ordered list of editor launchers probed by OpenIDE, from
// most to least specific, falling back to a bare command name per spec.md §4.C.
var ideCandidates = []string{"code", "code-insiders", "cursor", "subl", "idea"}

// Client manages git worktrees rooted at a fixed directory.
type Client struct {
	root     string // WORKTREES_ROOT
	executor domain.CommandExecutor
}

// NewClient creates a worktree client. root is WORKTREES_ROOT, the directory under
// which every task's worktree checkout lives.
func NewClient(root string, executor domain.CommandExecutor) *Client {
	return &Client{root: root, executor: executor}
}

var _ domain.WorktreeManager = (*Client)(nil)

// Create opens repoPath, bootstrapping an initial commit if HEAD is unborn, then
// creates branch task/{taskID} at HEAD and checks out a worktree at
// WORKTREES_ROOT/{taskID}.
func (c *Client) Create(repoPath, taskID, projectName string) (string, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", fmt.Errorf("%w: open %q: %v", domain.ErrNotGitRepository, repoPath, err)
	}

	if err := bootstrapIfUnborn(repo, projectName); err != nil {
		return "", fmt.Errorf("bootstrap initial commit: %w", err)
	}

	if err := os.MkdirAll(c.root, 0o750); err != nil {
		return "", fmt.Errorf("create worktrees root: %w", err)
	}
	path := filepath.Join(c.root, taskID)
	branch := domain.TaskBranch(taskID)

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path, nil // already created; idempotent
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}

	exists, err := c.branchExists(repoPath, branch)
	if err != nil {
		return "", err
	}

	if exists {
		if err := c.checkBranchTarget(repoPath, branch, head.Hash().String()); err != nil {
			return "", err
		}
	}

	var out []byte
	if exists {
		out, err = c.executor.Execute("git", repoPath, "worktree", "add", path, branch)
	} else {
		out, err = c.executor.Execute("git", repoPath, "worktree", "add", "-b", branch, path, head.Hash().String())
	}
	if err != nil {
		outStr := string(out)
		if strings.Contains(outStr, "already registered") {
			if _, pruneErr := c.executor.Execute("git", repoPath, "worktree", "prune"); pruneErr != nil {
				return "", fmt.Errorf("prune stale worktrees: %w", pruneErr)
			}
			out, err = c.executor.Execute("git", repoPath, "worktree", "add", "-b", branch, path, head.Hash().String())
			if err != nil {
				return "", fmt.Errorf("%w: create worktree after prune: %v: %s", domain.ErrGitOperationFailed, err, string(out))
			}
			return path, nil
		}
		return "", fmt.Errorf("%w: create worktree: %v: %s", domain.ErrGitOperationFailed, err, outStr)
	}

	return path, nil
}

// bootstrapIfUnborn materializes an initial commit when HEAD has no commits yet:
// a README.md naming the project, staged and committed as "Initial commit" with a
// synthetic author. Unborn HEAD is not a failure (spec.md §4.C); it is the
// trigger for this bootstrap.
func bootstrapIfUnborn(repo *git.Repository, projectName string) error {
	_, err := repo.Head()
	if err == nil {
		return nil // HEAD already born
	}
	if err != plumbing.ErrReferenceNotFound {
		return fmt.Errorf("resolve HEAD: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}

	readmePath := filepath.Join(wt.Filesystem.Root(), "README.md")
	content := "# " + projectName + "\n"
	if err := os.WriteFile(readmePath, []byte(content), 0o644); err != nil { //nolint:gosec // README is world-readable by convention
		return fmt.Errorf("write README.md: %w", err)
	}

	if _, err := wt.Add("README.md"); err != nil {
		return fmt.Errorf("stage README.md: %w", err)
	}

	author := &object.Signature{
		Name:  "Agent Board",
		Email: "agent-board@localhost",
		When:  time.Now(),
	}
	if _, err := wt.Commit("Initial commit", &git.CommitOptions{Author: author}); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Remove removes the worktree administratively from the repository's worktree
// list, removes its directory tree, and best-effort deletes task/{taskID}.
// Idempotent: removing an already-absent worktree succeeds.
func (c *Client) Remove(repoPath, taskID string) error {
	path := filepath.Join(c.root, taskID)
	branch := domain.TaskBranch(taskID)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			_, _ = c.executor.Execute("git", repoPath, "worktree", "prune")
			return nil
		}
		return fmt.Errorf("stat worktree: %w", err)
	}

	out, err := c.executor.Execute("git", repoPath, "worktree", "remove", "--force", path)
	if err != nil {
		return fmt.Errorf("%w: remove worktree: %v: %s", domain.ErrGitOperationFailed, err, string(out))
	}

	_, _ = c.executor.Execute("git", repoPath, "branch", "-D", branch) // best-effort
	return nil
}

// List enumerates worktrees known under root by reading directory entries and
// parsing the task id from the directory name.
func (c *Client) List() ([]domain.ListedWorktree, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read worktrees root: %w", err)
	}

	out := make([]domain.ListedWorktree, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		taskID := entry.Name()
		out = append(out, domain.ListedWorktree{
			TaskID: taskID,
			Path:   filepath.Join(c.root, taskID),
			Branch: domain.TaskBranch(taskID),
		})
	}
	return out, nil
}

// OpenFolder launches a platform file manager at path.
func (c *Client) OpenFolder(path string) error {
	switch runtime.GOOS {
	case "darwin":
		_, err := c.executor.Execute("open", "", path)
		return err
	case "windows":
		_, err := c.executor.Execute("explorer", "", path)
		return err
	default:
		_, err := c.executor.Execute("xdg-open", "", path)
		return err
	}
}

// OpenIDE probes ideCandidates in order, launching the first that succeeds.
// Reports failure only once every candidate has been tried.
func (c *Client) OpenIDE(path string) error {
	var lastErr error
	for _, candidate := range ideCandidates {
		if _, err := c.executor.Execute(candidate, "", path); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("%w: tried %v: %v", domain.ErrOpenerFailed, ideCandidates, lastErr)
}

func (c *Client) branchExists(repoPath, branch string) (bool, error) {
	ref := "refs/heads/" + branch
	_, err := c.executor.Execute("git", repoPath, "show-ref", "--verify", "--quiet", ref)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// checkBranchTarget fails with ErrBranchExistsMismatch when branch already
// exists but doesn't point at headHash: reusing it would silently graft the
// worktree onto unrelated history rather than the current HEAD (spec.md
// §4.C's distinct, non-retryable failure for this case).
func (c *Client) checkBranchTarget(repoPath, branch, headHash string) error {
	out, err := c.executor.Execute("git", repoPath, "rev-parse", "refs/heads/"+branch)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", domain.ErrGitOperationFailed, branch, err)
	}
	if strings.TrimSpace(string(out)) != headHash {
		return fmt.Errorf("%w: %s", domain.ErrBranchExistsMismatch, branch)
	}
	return nil
}
