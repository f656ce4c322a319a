package gateway

import (
	"encoding/json"
	"fmt"
)

// invokeRequest is the POST /api/invoke request body.
type invokeRequest struct {
	Cmd        string          `json:"cmd"`
	Args       json.RawMessage `json:"args"`
	ArgsString *string         `json:"args_string"`
}

// parseRequestArgs resolves a request's argument object. args_string, when
// present and non-empty, takes precedence over args (a caller that already
// serialized its arguments to a string, e.g. from a shell script, shouldn't
// have to also parse them back into JSON first). args itself is tolerated
// either as a JSON object or as a JSON-encoded string of one. A null or
// absent args defaults to an empty object, never a missing-argument error at
// this layer — individual commands report their own missing arguments.
func parseRequestArgs(req invokeRequest) (map[string]any, error) {
	if req.ArgsString != nil && *req.ArgsString != "" {
		var args map[string]any
		if err := json.Unmarshal([]byte(*req.ArgsString), &args); err != nil {
			return nil, fmt.Errorf("parse args_string: %w", err)
		}
		return args, nil
	}

	if len(req.Args) == 0 || string(req.Args) == "null" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal(req.Args, &args); err == nil {
		return args, nil
	}

	var nested string
	if err := json.Unmarshal(req.Args, &nested); err != nil {
		return nil, fmt.Errorf("parse args: %w", err)
	}
	if nested == "" {
		return map[string]any{}, nil
	}
	var args2 map[string]any
	if err := json.Unmarshal([]byte(nested), &args2); err != nil {
		return nil, fmt.Errorf("parse args (nested string): %w", err)
	}
	return args2, nil
}
