package dispatcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/Vg34100/agent-board/internal/agentrunner"
	"github.com/Vg34100/agent-board/internal/domain"
	"github.com/Vg34100/agent-board/internal/infra/fsnav"
	"github.com/Vg34100/agent-board/internal/infra/git"
	"github.com/Vg34100/agent-board/internal/infra/store"
)

// Services bundles the ports and components command handlers need. It is
// built once by internal/app's Container and shared by both the CLI and the
// HTTP Gateway.
type Services struct {
	Store     domain.Store
	Worktrees domain.WorktreeManager
	Runner    *agentrunner.Runner
	Clock     domain.Clock
}

// New builds a Dispatcher with every command registered against svc.
//
// is_dev_mode, present in the original desktop-shell command table, has no
// equivalent here: a standalone server binary has no debug-build flag to
// report, so it is not wired (see DESIGN.md).
func New(svc Services) *Dispatcher {
	d := newRegistry()

	d.Register("list_directory", func(ctx context.Context, a Args) (any, error) {
		path, err := a.RequireString("path")
		if err != nil {
			return nil, err
		}
		return fsnav.ListDirectory(path)
	})

	d.Register("get_parent_directory", func(ctx context.Context, a Args) (any, error) {
		path, err := a.RequireString("path")
		if err != nil {
			return nil, err
		}
		return fsnav.ParentDirectory(path), nil
	})

	d.Register("get_home_directory", func(ctx context.Context, a Args) (any, error) {
		return fsnav.HomeDirectory()
	})

	d.Register("create_project_directory", func(ctx context.Context, a Args) (any, error) {
		path, err := a.RequireString("path")
		if err != nil {
			return nil, err
		}
		return fsnav.CreateProjectDirectory(path)
	})

	d.Register("initialize_git_repo", func(ctx context.Context, a Args) (any, error) {
		path, err := a.RequireString("path")
		if err != nil {
			return nil, err
		}
		return nil, git.Initialize(path)
	})

	d.Register("validate_git_repository", func(ctx context.Context, a Args) (any, error) {
		path, err := a.RequireString("path")
		if err != nil {
			return nil, err
		}
		return nil, git.Validate(path)
	})

	d.Register("load_projects_data", func(ctx context.Context, a Args) (any, error) {
		return loadProjects(svc.Store), nil
	})

	d.Register("save_projects_data", func(ctx context.Context, a Args) (any, error) {
		raw, err := a.RequireArray("projects")
		if err != nil {
			return nil, err
		}
		var projects []domain.Project
		if err := roundTrip(raw, &projects); err != nil {
			return nil, fmt.Errorf("decode projects: %w", err)
		}
		return nil, saveProjects(svc.Store, projects)
	})

	d.Register("load_tasks_data", func(ctx context.Context, a Args) (any, error) {
		projectID, err := a.RequireString("project_id")
		if err != nil {
			return nil, err
		}
		return loadTasks(svc.Store, projectID), nil
	})

	d.Register("save_tasks_data", func(ctx context.Context, a Args) (any, error) {
		projectID, err := a.RequireString("project_id")
		if err != nil {
			return nil, err
		}
		raw, err := a.RequireArray("tasks")
		if err != nil {
			return nil, err
		}
		var tasks []domain.Task
		if err := roundTrip(raw, &tasks); err != nil {
			return nil, fmt.Errorf("decode tasks: %w", err)
		}
		return nil, saveTasks(svc.Store, projectID, tasks)
	})

	d.Register("create_task_worktree", func(ctx context.Context, a Args) (any, error) {
		taskID, err := a.RequireString("task_id")
		if err != nil {
			return nil, err
		}
		repoPath, err := a.RequireString("repo_path")
		if err != nil {
			return nil, err
		}
		projectName := a.StringOr("project_name", "")
		path, err := svc.Worktrees.Create(repoPath, taskID, projectName)
		if err != nil {
			return nil, err
		}
		return map[string]string{
			"worktree_path": path,
			"branch":        domain.TaskBranch(taskID),
		}, nil
	})

	d.Register("remove_task_worktree", func(ctx context.Context, a Args) (any, error) {
		taskID, err := a.RequireString("task_id")
		if err != nil {
			return nil, err
		}
		repoPath, err := a.RequireString("repo_path")
		if err != nil {
			return nil, err
		}
		return nil, svc.Worktrees.Remove(repoPath, taskID)
	})

	d.Register("open_worktree_location", func(ctx context.Context, a Args) (any, error) {
		path, err := a.RequireString("worktree_path")
		if err != nil {
			return nil, err
		}
		return nil, svc.Worktrees.OpenFolder(path)
	})

	d.Register("open_worktree_in_ide", func(ctx context.Context, a Args) (any, error) {
		path, err := a.RequireString("worktree_path")
		if err != nil {
			return nil, err
		}
		return nil, svc.Worktrees.OpenIDE(path)
	})

	d.Register("list_app_worktrees", func(ctx context.Context, a Args) (any, error) {
		return svc.Worktrees.List()
	})

	d.Register("start_agent_process", func(ctx context.Context, a Args) (any, error) {
		taskID, err := a.RequireString("task_id")
		if err != nil {
			return nil, err
		}
		worktreePath, err := a.RequireString("worktree_path")
		if err != nil {
			return nil, err
		}
		title := a.StringOr("task_title", "")
		description := a.StringOr("task_description", "")
		profile := domain.Profile(a.StringOr("profile", string(domain.ProfileClaude)))

		task := &domain.Task{ID: taskID, Title: title, Description: description, WorktreePath: worktreePath}
		return svc.Runner.Start(ctx, task, profile, composeInitialPrompt(title, description))
	})

	d.Register("send_agent_message", func(ctx context.Context, a Args) (any, error) {
		return sendAgentMessage(ctx, svc, a, "")
	})

	d.Register("send_agent_message_with_profile", func(ctx context.Context, a Args) (any, error) {
		profile := domain.Profile(a.StringOr("profile", ""))
		return sendAgentMessage(ctx, svc, a, profile)
	})

	d.Register("get_process_list", func(ctx context.Context, a Args) (any, error) {
		taskID, err := a.RequireString("task_id")
		if err != nil {
			return nil, err
		}
		return svc.Runner.ProcessesForTask(taskID), nil
	})

	d.Register("get_process_details", func(ctx context.Context, a Args) (any, error) {
		processID, err := a.RequireString("process_id")
		if err != nil {
			return nil, err
		}
		proc, ok := svc.Runner.Process(processID)
		if !ok {
			return nil, domain.ErrProcessNotFound
		}
		return proc, nil
	})

	d.Register("get_agent_messages", func(ctx context.Context, a Args) (any, error) {
		processID, err := a.RequireString("process_id")
		if err != nil {
			return nil, err
		}
		return svc.Runner.MessagesForProcess(processID)
	})

	d.Register("kill_agent_process", func(ctx context.Context, a Args) (any, error) {
		processID, err := a.RequireString("process_id")
		if err != nil {
			return nil, err
		}
		return nil, svc.Runner.Kill(processID)
	})

	d.Register("load_agent_settings", func(ctx context.Context, a Args) (any, error) {
		return loadSettings(svc.Store), nil
	})

	d.Register("save_agent_settings", func(ctx context.Context, a Args) (any, error) {
		raw, ok := a.Raw("settings")
		if !ok {
			return nil, fmt.Errorf("%w: settings", domain.ErrMissingArgument)
		}
		var settings map[string]any
		if err := roundTrip(raw, &settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		return nil, saveSettings(svc.Store, settings)
	})

	d.Register("load_task_agent_messages", func(ctx context.Context, a Args) (any, error) {
		taskID, err := a.RequireString("task_id")
		if err != nil {
			return nil, err
		}
		return svc.Runner.Messages(taskID), nil
	})

	d.Register("save_task_agent_messages", func(ctx context.Context, a Args) (any, error) {
		taskID, err := a.RequireString("task_id")
		if err != nil {
			return nil, err
		}
		raw, err := a.RequireArray("messages")
		if err != nil {
			return nil, err
		}
		var messages []domain.AgentMessage
		if err := roundTrip(raw, &messages); err != nil {
			return nil, fmt.Errorf("decode messages: %w", err)
		}
		file := store.FileAgentMessages(taskID)
		svc.Store.Set(file, "messages", messages)
		return nil, svc.Store.Save(file)
	})

	d.Register("load_process_agent_messages", func(ctx context.Context, a Args) (any, error) {
		taskID, err := a.RequireString("task_id")
		if err != nil {
			return nil, err
		}
		processID, err := a.RequireString("process_id")
		if err != nil {
			return nil, err
		}
		return svc.Runner.ProcessMessages(taskID, processID), nil
	})

	d.Register("save_process_agent_messages", func(ctx context.Context, a Args) (any, error) {
		taskID, err := a.RequireString("task_id")
		if err != nil {
			return nil, err
		}
		processID, err := a.RequireString("process_id")
		if err != nil {
			return nil, err
		}
		raw, err := a.RequireArray("messages")
		if err != nil {
			return nil, err
		}
		var messages []domain.AgentMessage
		if err := roundTrip(raw, &messages); err != nil {
			return nil, fmt.Errorf("decode messages: %w", err)
		}
		file := store.FileProcessAgentMessages(taskID, processID)
		svc.Store.Set(file, "messages", messages)
		return nil, svc.Store.Save(file)
	})

	d.Register("load_agent_processes", func(ctx context.Context, a Args) (any, error) {
		return svc.Runner.AllProcesses(), nil
	})

	d.Register("save_agent_processes", func(ctx context.Context, a Args) (any, error) {
		raw, err := a.RequireArray("processes")
		if err != nil {
			return nil, err
		}
		var processes []domain.AgentProcess
		if err := roundTrip(raw, &processes); err != nil {
			return nil, fmt.Errorf("decode processes: %w", err)
		}
		svc.Store.Set(store.FileAgentProcesses, "processes", processes)
		return nil, svc.Store.Save(store.FileAgentProcesses)
	})

	return d
}

// sendAgentMessage implements both send_agent_message and
// send_agent_message_with_profile, which differ only in whether the caller
// supplies a profile override for the reply.
func sendAgentMessage(ctx context.Context, svc Services, a Args, overrideProfile domain.Profile) (any, error) {
	taskID, err := a.RequireString("task_id")
	if err != nil {
		return nil, err
	}
	worktreePath, err := a.RequireString("worktree_path")
	if err != nil {
		return nil, err
	}
	parentProcessID, ok := a.String("process_id")
	if !ok || parentProcessID == "" {
		parentProcessID, ok = a.String("prior_process_id")
	}
	if !ok || parentProcessID == "" {
		return nil, fmt.Errorf("%w: process_id", domain.ErrMissingArgument)
	}
	message, err := a.RequireString("message")
	if err != nil {
		return nil, err
	}

	task := &domain.Task{ID: taskID, WorktreePath: worktreePath}
	return svc.Runner.Reply(ctx, task, parentProcessID, message, overrideProfile)
}

// composeInitialPrompt builds the opening prompt for a task's first agent
// process from its title and description, since start_agent_process carries
// no separate free-form message of its own.
func composeInitialPrompt(title, description string) string {
	var b strings.Builder
	b.WriteString(title)
	if description != "" {
		b.WriteString("\n\n")
		b.WriteString(description)
	}
	return b.String()
}
