package agentrunner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Vg34100/agent-board/internal/domain"
)

// CodexParser parses the Codex CLI's `codex exec --json` output: JSON lines
// (occasionally multiple objects concatenated on one line under load, hence
// splitJSONObjects) wrapping a discriminated inner "msg" envelope. Grounded
// on original_source/src-tauri/src/agent.rs's parse_codex_output, which
// dispatches on msg.type rather than a top-level type field the way Claude's
// dialect does.
type CodexParser struct {
	// Debug, when set, surfaces zero-value token_count events that are
	// otherwise dropped as noise (AGENT_BOARD_DEBUG gate).
	Debug bool
}

type codexLine struct {
	ID  string   `json:"id"`
	Msg codexMsg `json:"msg"`
}

type codexMsg struct {
	Type             string `json:"type"`
	Message          string `json:"message"`
	Text             string `json:"text"`
	Command          string `json:"command"`
	ExitCode         *int   `json:"exit_code"`
	Cwd              string `json:"cwd"`
	Patch            string `json:"patch"`
	Path             string `json:"path"`
	InputTokens      *int   `json:"input_tokens"`
	OutputTokens     *int   `json:"output_tokens"`
	TotalTokens      *int   `json:"total_tokens"`
	LastAgentMessage string `json:"last_agent_message"`
}

func (p CodexParser) ParseLine(line string) []ParsedEvent {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	objs := splitJSONObjects(line)
	if len(objs) == 0 {
		// No brace-balanced JSON value on this line at all: codex exec
		// intermixes banners, shutdown notices, and internal log lines with
		// its --json stream, so these need their own classification instead
		// of being silently dropped.
		return p.parseNonJSONLine(line)
	}

	var events []ParsedEvent
	for _, obj := range objs {
		events = append(events, p.parseCodexObject(obj)...)
	}
	return events
}

// parseNonJSONLine classifies output that isn't a JSON value at all.
// Internal codex_core/codex_exec log lines are dropped as noise; shutdown
// notices become a system event; anything else is treated as plain assistant
// text, matching the original's non-JSON handling.
func (p CodexParser) parseNonJSONLine(line string) []ParsedEvent {
	if containsAny(line, "INFO", "DEBUG", "WARN") && containsAny(line, "codex_core", "codex_exec") {
		return nil
	}

	if containsAny(line, "Shutting down", "interrupt received") {
		return []ParsedEvent{{
			Sender:      domain.SenderSystem,
			MessageType: domain.MessageSystemInit,
			Content:     line,
		}}
	}

	return []ParsedEvent{{
		Sender:      domain.SenderAssistant,
		MessageType: domain.MessageText,
		Content:     line,
	}}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func (p CodexParser) parseCodexObject(obj string) []ParsedEvent {
	var l codexLine
	if err := json.Unmarshal([]byte(obj), &l); err != nil {
		return nil
	}

	switch l.Msg.Type {
	case "session_configured", "task_started":
		return []ParsedEvent{{
			Sender:      domain.SenderSystem,
			MessageType: domain.MessageSystemInit,
			Content:     "session " + l.Msg.Type,
		}}

	case "agent_reasoning", "agent_reasoning_delta":
		if l.Msg.Text == "" {
			return nil
		}
		return []ParsedEvent{{
			Sender:      domain.SenderAssistant,
			MessageType: domain.MessageText,
			Content:     l.Msg.Text,
			Metadata:    map[string]any{"reasoning": true},
			TurnKey:     "reasoning:" + l.ID,
		}}

	case "agent_message", "agent_message_delta":
		content := l.Msg.Message
		if content == "" {
			content = l.Msg.Text
		}
		if content == "" {
			return nil
		}
		return []ParsedEvent{{
			Sender:      domain.SenderAssistant,
			MessageType: domain.MessageText,
			Content:     content,
			TurnKey:     "message:" + l.ID,
		}}

	case "exec_command_begin":
		return []ParsedEvent{{
			Sender:      domain.SenderTool,
			MessageType: domain.MessageToolRun,
			Content:     l.Msg.Command,
			Metadata:    map[string]any{"call_id": l.ID, "cwd": l.Msg.Cwd},
		}}

	case "exec_command_end":
		exit := 0
		if l.Msg.ExitCode != nil {
			exit = *l.Msg.ExitCode
		}
		return []ParsedEvent{{
			Sender:      domain.SenderTool,
			MessageType: domain.MessageToolRun,
			Content:     fmt.Sprintf("exit %d", exit),
			Metadata:    map[string]any{"call_id": l.ID, "exit_code": exit},
		}}

	case "patch_apply_begin", "apply_patch":
		diff, added, removed := synthUnifiedDiff(l.Msg.Path, "", l.Msg.Patch)
		meta := domain.ToolEditMetadata{FilePath: l.Msg.Path, DiffUnified: diff, Added: added, Removed: removed}
		return []ParsedEvent{{
			Sender:      domain.SenderTool,
			MessageType: domain.MessageToolEdit,
			Content:     fmt.Sprintf("patch(%s)", l.Msg.Path),
			Metadata:    meta.AsMap(),
		}}

	case "task_complete":
		content := l.Msg.LastAgentMessage
		if content == "" {
			content = "task complete"
		}
		return []ParsedEvent{{
			Sender:      domain.SenderAssistant,
			MessageType: domain.MessageResult,
			Content:     content,
			Metadata:    map[string]any{"subtype": "success"},
		}}

	case "token_count":
		input := intOrZero(l.Msg.InputTokens)
		output := intOrZero(l.Msg.OutputTokens)
		total := intOrZero(l.Msg.TotalTokens)
		if input == 0 && output == 0 && total == 0 {
			if !p.Debug {
				return nil
			}
			return []ParsedEvent{{
				Sender:      domain.SenderSystem,
				MessageType: domain.MessageSystemInit,
				Content:     "token usage: 0 input, 0 output, 0 total",
				Metadata:    map[string]any{"debug": true},
			}}
		}
		return []ParsedEvent{{
			Sender:      domain.SenderSystem,
			MessageType: domain.MessageSystemInit,
			Content:     fmt.Sprintf("token usage: %d input, %d output, %d total", input, output, total),
			Metadata:    map[string]any{"input_tokens": input, "output_tokens": output, "total_tokens": total},
		}}

	case "error":
		content := l.Msg.Message
		if content == "" {
			content = "codex reported an error"
		}
		return []ParsedEvent{{
			Sender:      domain.SenderAssistant,
			MessageType: domain.MessageResult,
			Content:     content,
			Metadata:    map[string]any{"subtype": "error", "is_error": true},
		}}

	default:
		// Unknown msg types (a realistic occurrence given codex exec --json's
		// evolving schema) are surfaced only when they look important or
		// debug tracing is on, matching the original's "truly unknown event
		// types" gate.
		if p.Debug || strings.Contains(l.Msg.Type, "error") || strings.Contains(l.Msg.Type, "fail") {
			return []ParsedEvent{{
				Sender:      domain.SenderSystem,
				MessageType: domain.MessageSystemInit,
				Content:     fmt.Sprintf("codex event: %s", l.Msg.Type),
				Metadata:    map[string]any{"unrecognized_type": l.Msg.Type},
			}}
		}
		return nil
	}
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
