package dispatcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Vg34100/agent-board/internal/agentrunner"
	"github.com/Vg34100/agent-board/internal/domain"
	"github.com/Vg34100/agent-board/internal/eventbus"
	"github.com/Vg34100/agent-board/internal/infra/fsnav"
	"github.com/Vg34100/agent-board/internal/infra/logging"
	"github.com/Vg34100/agent-board/internal/infra/store"
)

type fakeWorktrees struct {
	createPath string
	createErr  error
	removed    []string
}

func (f *fakeWorktrees) Create(repoPath, taskID, projectName string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.createPath, nil
}
func (f *fakeWorktrees) Remove(repoPath, taskID string) error {
	f.removed = append(f.removed, taskID)
	return nil
}
func (f *fakeWorktrees) List() ([]domain.ListedWorktree, error) { return nil, nil }
func (f *fakeWorktrees) OpenFolder(path string) error           { return nil }
func (f *fakeWorktrees) OpenIDE(path string) error              { return nil }

func newTestServices(t *testing.T) (Services, domain.Store) {
	t.Helper()
	s := store.New(t.TempDir())
	bus := eventbus.New()
	logger := logging.New(io.Discard, slog.LevelError)
	runner := agentrunner.New(s, bus, domain.RealClock{}, logger, agentrunner.BuiltinProfiles())
	return Services{
		Store:     s,
		Worktrees: &fakeWorktrees{createPath: "/tmp/wt"},
		Runner:    runner,
		Clock:     domain.RealClock{},
	}, s
}

func TestListDirectoryCommand(t *testing.T) {
	svc, _ := newTestServices(t)
	d := New(svc)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	result, err := d.Dispatch(context.Background(), "list_directory", map[string]any{"path": dir})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	entries, ok := result.([]fsnav.Entry)
	if !ok || len(entries) != 1 || entries[0].Name != "a.txt" {
		t.Fatalf("unexpected list_directory result: %+v", result)
	}
}

func TestListDirectoryCommandMissingArg(t *testing.T) {
	svc, _ := newTestServices(t)
	d := New(svc)
	_, err := d.Dispatch(context.Background(), "list_directory", map[string]any{})
	if !errors.Is(err, domain.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
}

func TestSaveAndLoadProjectsDataRoundTrip(t *testing.T) {
	svc, _ := newTestServices(t)
	d := New(svc)

	projects := []any{
		map[string]any{"id": "p1", "name": "Demo", "repo_path": "/repo"},
	}
	if _, err := d.Dispatch(context.Background(), "save_projects_data", map[string]any{"projects": projects}); err != nil {
		t.Fatalf("save: %v", err)
	}

	result, err := d.Dispatch(context.Background(), "load_projects_data", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded, ok := result.([]domain.Project)
	if !ok || len(loaded) != 1 || loaded[0].ID != "p1" {
		t.Fatalf("unexpected loaded projects: %+v", result)
	}
}

func TestCreateTaskWorktreeCommand(t *testing.T) {
	svc, _ := newTestServices(t)
	d := New(svc)

	result, err := d.Dispatch(context.Background(), "create_task_worktree", map[string]any{
		"task_id":      "t1",
		"repo_path":    "/repo",
		"project_name": "Demo",
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	m, ok := result.(map[string]string)
	if !ok || m["worktree_path"] != "/tmp/wt" || m["branch"] != "task/t1" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestStartAgentProcessRejectsMissingWorktree(t *testing.T) {
	svc, _ := newTestServices(t)
	d := New(svc)

	_, err := d.Dispatch(context.Background(), "start_agent_process", map[string]any{
		"task_id":    "t1",
		"task_title": "do the thing",
	})
	if !errors.Is(err, domain.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
}

func TestGetProcessListEmpty(t *testing.T) {
	svc, _ := newTestServices(t)
	d := New(svc)

	result, err := d.Dispatch(context.Background(), "get_process_list", map[string]any{"task_id": "t1"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	procs, ok := result.([]domain.AgentProcess)
	if !ok || len(procs) != 0 {
		t.Fatalf("expected empty process list, got %+v", result)
	}
}

func TestGetProcessListRequiresTaskID(t *testing.T) {
	svc, _ := newTestServices(t)
	d := New(svc)

	_, err := d.Dispatch(context.Background(), "get_process_list", nil)
	if !errors.Is(err, domain.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
}

func TestGetProcessListScopesToTaskAndOrdersByStartTime(t *testing.T) {
	svc, s := newTestServices(t)
	d := New(svc)

	older := domain.AgentProcess{ID: "p1", TaskID: "t1", Profile: domain.ProfileClaude, Kind: domain.ProcessInitial, Status: domain.ProcessCompleted, StartTime: time.Unix(100, 0)}
	newer := domain.AgentProcess{ID: "p2", TaskID: "t1", Profile: domain.ProfileClaude, Kind: domain.ProcessInitial, Status: domain.ProcessCompleted, StartTime: time.Unix(200, 0)}
	other := domain.AgentProcess{ID: "p3", TaskID: "t2", Profile: domain.ProfileClaude, Kind: domain.ProcessInitial, Status: domain.ProcessCompleted, StartTime: time.Unix(50, 0)}
	processes := []domain.AgentProcess{newer, older, other}
	s.Set(store.FileAgentProcesses, "processes", processes)
	if err := s.Save(store.FileAgentProcesses); err != nil {
		t.Fatalf("save: %v", err)
	}

	result, err := d.Dispatch(context.Background(), "get_process_list", map[string]any{"task_id": "t1"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	procs, ok := result.([]domain.AgentProcess)
	if !ok || len(procs) != 2 {
		t.Fatalf("expected 2 processes scoped to t1, got %+v", result)
	}
	if procs[0].ID != "p1" || procs[1].ID != "p2" {
		t.Fatalf("expected ascending start_time order p1,p2, got %s,%s", procs[0].ID, procs[1].ID)
	}
}

func TestUnknownCommandReturnsErr(t *testing.T) {
	svc, _ := newTestServices(t)
	d := New(svc)
	_, err := d.Dispatch(context.Background(), "totally_bogus", nil)
	if !errors.Is(err, domain.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}
