package dispatcher

import (
	"context"
	"errors"
	"testing"

	"github.com/Vg34100/agent-board/internal/domain"
)

func TestDispatchUnknownCommand(t *testing.T) {
	d := newRegistry()
	_, err := d.Dispatch(context.Background(), "nope", nil)
	if !errors.Is(err, domain.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestDispatchNormalizesArgCasing(t *testing.T) {
	d := newRegistry()
	var got string
	d.Register("echo_task_id", func(ctx context.Context, a Args) (any, error) {
		got, _ = a.String("task_id")
		return nil, nil
	})

	if _, err := d.Dispatch(context.Background(), "echo_task_id", map[string]any{"taskId": "abc"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got != "abc" {
		t.Fatalf("expected normalized snake_case lookup to see taskId's value, got %q", got)
	}
}

func TestRequireStringMissingArgument(t *testing.T) {
	a := normalizeArgs(map[string]any{})
	_, err := a.RequireString("task_id")
	if !errors.Is(err, domain.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
}

func TestToSnakeAndCamelCase(t *testing.T) {
	if got := toSnakeCase("taskId"); got != "task_id" {
		t.Fatalf("toSnakeCase(taskId) = %q", got)
	}
	if got := toCamelCase("task_id"); got != "taskId" {
		t.Fatalf("toCamelCase(task_id) = %q", got)
	}
}
