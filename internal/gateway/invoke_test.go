package gateway

import (
	"encoding/json"
	"testing"
)

func TestParseRequestArgsPrefersArgsString(t *testing.T) {
	argsStr := `{"task_id":"from_string"}`
	req := invokeRequest{Args: json.RawMessage(`{"task_id":"from_args"}`), ArgsString: &argsStr}
	args, err := parseRequestArgs(req)
	if err != nil {
		t.Fatalf("parseRequestArgs: %v", err)
	}
	if args["task_id"] != "from_string" {
		t.Fatalf("expected args_string to win, got %+v", args)
	}
}

func TestParseRequestArgsPlainObject(t *testing.T) {
	req := invokeRequest{Args: json.RawMessage(`{"task_id":"abc"}`)}
	args, err := parseRequestArgs(req)
	if err != nil {
		t.Fatalf("parseRequestArgs: %v", err)
	}
	if args["task_id"] != "abc" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestParseRequestArgsNestedJSONString(t *testing.T) {
	req := invokeRequest{Args: json.RawMessage(`"{\"task_id\":\"nested\"}"`)}
	args, err := parseRequestArgs(req)
	if err != nil {
		t.Fatalf("parseRequestArgs: %v", err)
	}
	if args["task_id"] != "nested" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestParseRequestArgsNullDefaultsEmpty(t *testing.T) {
	req := invokeRequest{Args: json.RawMessage(`null`)}
	args, err := parseRequestArgs(req)
	if err != nil {
		t.Fatalf("parseRequestArgs: %v", err)
	}
	if len(args) != 0 {
		t.Fatalf("expected empty args, got %+v", args)
	}
}

func TestParseRequestArgsAbsentDefaultsEmpty(t *testing.T) {
	args, err := parseRequestArgs(invokeRequest{})
	if err != nil {
		t.Fatalf("parseRequestArgs: %v", err)
	}
	if len(args) != 0 {
		t.Fatalf("expected empty args, got %+v", args)
	}
}
