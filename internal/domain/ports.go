package domain

import (
	"context"
	"io"
	"time"
)

// Clock provides time operations for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// WorktreeInfo describes one entry from the git worktree list.
type WorktreeInfo struct {
	Path   string
	Branch string
}

// WorktreeManager owns the lifecycle of per-task worktree checkouts.
type WorktreeManager interface {
	// Create opens repoPath, bootstraps an initial commit if HEAD is unborn,
	// creates branch TaskBranch(taskID) at HEAD, and checks out a worktree for it.
	// Returns the worktree's absolute path.
	Create(repoPath, taskID, projectName string) (path string, err error)

	// Remove removes the worktree administratively and deletes its directory tree.
	// Idempotent: removing an absent worktree succeeds.
	Remove(repoPath, taskID string) error

	// List enumerates worktrees known under the manager's root, by task id.
	List() ([]ListedWorktree, error)

	// OpenFolder launches a platform file manager at path.
	OpenFolder(path string) error

	// OpenIDE probes an ordered list of editor launchers and opens path with the
	// first one that resolves.
	OpenIDE(path string) error
}

// ListedWorktree is one worktree known to the manager, with its task id parsed
// from its directory name.
type ListedWorktree struct {
	TaskID string
	Path   string
	Branch string
}

// CommandExecutor runs external commands. Implementations shell out; callers are
// trusted internal code, never raw user input, per the teacher's #nosec convention.
type CommandExecutor interface {
	// Execute runs a command to completion and returns its combined output.
	Execute(program, dir string, args ...string) ([]byte, error)

	// ExecuteWithContext runs a command to completion, cancellable via ctx, with
	// stdout/stderr streamed to the given writers.
	ExecuteWithContext(ctx context.Context, program, dir string, stdout, stderr io.Writer, args ...string) error
}

// Logger is the ambient structured logger every component receives via
// constructor injection.
type Logger interface {
	Debug(category, msg string, args ...any)
	Info(category, msg string, args ...any)
	Warn(category, msg string, args ...any)
	Error(category, msg string, args ...any)
}

// Store is the partitioned JSON document store (spec.md §4.A). file is a logical
// name such as "projects.json"; key is the top-level key within that file.
type Store interface {
	// Get returns the value for key in file, or (nil, false) if the file or key
	// is missing or the file is corrupt. Never returns an error.
	Get(file, key string) (value any, ok bool)

	// Set stages a value for key in file; it is not durable until Save.
	Set(file, key string, value any)

	// Save durably (atomically) writes file's staged values to disk.
	Save(file string) error

	// Delete removes file's backing document entirely.
	Delete(file string) error
}

// EventBus is the process-wide broadcaster (spec.md §4.B).
type EventBus interface {
	// Publish fans event out to all current subscribers. Non-blocking: a
	// subscriber whose buffer is full misses the event rather than stalling
	// the publisher.
	Publish(event string, payload any)

	// Subscribe registers a new subscriber and returns it. Cancelling ctx (or
	// calling Subscription.Close) unregisters it.
	Subscribe(ctx context.Context) *Subscription
}

// Subscription is one subscriber's view of the EventBus.
type Subscription struct {
	Events chan Event
	cancel func()
}

// NewSubscription constructs a Subscription for an EventBus implementation.
// cancel is called at most once, from Close or the bus's own ctx-done watcher.
func NewSubscription(events chan Event, cancel func()) *Subscription {
	return &Subscription{Events: events, cancel: cancel}
}

// Event is one delivered (name, payload) pair.
type Event struct {
	Name    string
	Payload any
}

// Close unregisters the subscription. Safe to call multiple times.
func (s *Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
