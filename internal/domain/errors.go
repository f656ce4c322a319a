package domain

import "errors"

// Sentinel errors, checked with errors.Is, grouped below by error kind (not
// found / invalid input / conflict / external failure).
var (
	// Not found.
	ErrProjectNotFound  = errors.New("project not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrProcessNotFound  = errors.New("agent process not found")
	ErrWorktreeNotFound = errors.New("worktree not found")

	// Invalid input.
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrEmptyMessage    = errors.New("message cannot be empty")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidProfile  = errors.New("invalid agent profile")
	ErrMissingArgument = errors.New("missing required argument")
	ErrUnknownCommand  = errors.New("unknown command")

	// Conflict.
	ErrBranchExistsMismatch = errors.New("branch already exists pointing at a different commit")
	ErrWorktreeExists       = errors.New("worktree already exists")
	ErrUncommittedChanges   = errors.New("uncommitted changes exist")
	ErrAgentAlreadyRunning  = errors.New("an agent process is already running for this task")
	ErrPathExists           = errors.New("path already exists")

	// External failure.
	ErrNotGitRepository   = errors.New("not a git repository")
	ErrGitOperationFailed = errors.New("git operation failed")
	ErrSpawnFailed        = errors.New("failed to start agent process")
	ErrNoCommandResolved  = errors.New("no command candidate resolved")
	ErrOpenerFailed       = errors.New("no opener candidate succeeded")
)
