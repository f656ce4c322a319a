// Package domain contains Agent Board's core entities, ports, and sentinel errors.
package domain

import "time"

// Status is a Task's position on the kanban board.
type Status string

const (
	StatusToDo       Status = "ToDo"
	StatusInProgress Status = "InProgress"
	StatusInReview   Status = "InReview"
	StatusDone       Status = "Done"
	StatusCancelled  Status = "Cancelled"
)

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusInReview, StatusDone, StatusCancelled:
		return true
	default:
		return false
	}
}

// Project is a top-level container for tasks, rooted at a git repository.
// Fields are ordered to minimize memory padding.
type Project struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RepoPath  string    `json:"repo_path"`
}

// Task is a unit of work tracked on the board. WorktreePath and Branch are both
// set or both unset together.
// Fields are ordered to minimize memory padding.
type Task struct {
	CreatedAt    time.Time `json:"created_at"`
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       Status    `json:"status"`
	WorktreePath string    `json:"worktree_path,omitempty"`
	Branch       string    `json:"branch,omitempty"`
}

// HasWorktree reports whether the task has an associated worktree.
func (t *Task) HasWorktree() bool {
	return t.WorktreePath != ""
}

// TaskBranch returns the branch name a task's worktree is created on.
func TaskBranch(taskID string) string {
	return "task/" + taskID
}

// ParseTaskBranch extracts the task id from a branch created by TaskBranch.
// Reports false for any branch not following the "task/{id}" convention.
func ParseTaskBranch(branch string) (string, bool) {
	const prefix = "task/"
	if len(branch) <= len(prefix) || branch[:len(prefix)] != prefix {
		return "", false
	}
	return branch[len(prefix):], true
}
