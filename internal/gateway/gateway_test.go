package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Vg34100/agent-board/internal/agentrunner"
	"github.com/Vg34100/agent-board/internal/dispatcher"
	"github.com/Vg34100/agent-board/internal/domain"
	"github.com/Vg34100/agent-board/internal/eventbus"
	"github.com/Vg34100/agent-board/internal/infra/logging"
	"github.com/Vg34100/agent-board/internal/infra/store"
)

type noopWorktrees struct{}

func (noopWorktrees) Create(repoPath, taskID, projectName string) (string, error) { return "", nil }
func (noopWorktrees) Remove(repoPath, taskID string) error                        { return nil }
func (noopWorktrees) List() ([]domain.ListedWorktree, error)                      { return nil, nil }
func (noopWorktrees) OpenFolder(path string) error                               { return nil }
func (noopWorktrees) OpenIDE(path string) error                                  { return nil }

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	s := store.New(t.TempDir())
	bus := eventbus.New()
	logger := logging.New(io.Discard, slog.LevelError)
	runner := agentrunner.New(s, bus, domain.RealClock{}, logger, agentrunner.BuiltinProfiles())
	d := dispatcher.New(dispatcher.Services{
		Store:     s,
		Worktrees: noopWorktrees{},
		Runner:    runner,
		Clock:     domain.RealClock{},
	})
	return New(d, bus, logger, false, nil)
}

func TestHandleHealth(t *testing.T) {
	g := newTestGateway(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "ok" {
		t.Fatalf("expected plain-text body %q, got %q", "ok", body)
	}
}

func TestHandleInvokeUnknownCommand(t *testing.T) {
	g := newTestGateway(t)
	body, _ := json.Marshal(map[string]any{"cmd": "nope", "args": map[string]any{}})
	req := httptest.NewRequest(http.MethodPost, "/api/invoke", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown command, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp invokeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Ok || resp.Error == "" {
		t.Fatalf("expected {ok:false,error:...}, got %+v", resp)
	}
}

func TestHandleInvokeLoadProjectsData(t *testing.T) {
	g := newTestGateway(t)
	body, _ := json.Marshal(map[string]any{"cmd": "load_projects_data"})
	req := httptest.NewRequest(http.MethodPost, "/api/invoke", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp invokeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Ok {
		t.Fatalf("expected ok:true, got %+v", resp)
	}
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
}

func TestHandleInvokeMissingArgument(t *testing.T) {
	g := newTestGateway(t)
	body, _ := json.Marshal(map[string]any{"cmd": "list_directory", "args": map[string]any{}})
	req := httptest.NewRequest(http.MethodPost, "/api/invoke", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp invokeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Ok || resp.Error == "" {
		t.Fatalf("expected {ok:false,error:...}, got %+v", resp)
	}
}
