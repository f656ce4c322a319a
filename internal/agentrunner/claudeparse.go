package agentrunner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Vg34100/agent-board/internal/domain"
)

// ClaudeParser parses Claude Code's --output-format stream-json NDJSON lines.
// Grounded on original_source/src-tauri/src/agent.rs's parse_claude_output,
// which dispatches on the top-level "type" field ("system", "assistant",
// "user", "result").
type ClaudeParser struct{}

type claudeLine struct {
	Type     string          `json:"type"`
	Subtype  string          `json:"subtype"`
	Message  *claudeMessage  `json:"message"`
	IsError  bool            `json:"is_error"`
	Result   string          `json:"result"`
	Model    string          `json:"model"`
	SessionID string         `json:"session_id"`
	Tools    []string        `json:"tools"`
	DurationMS int64         `json:"duration_ms"`
	TotalCost float64        `json:"total_cost_usd"`
}

type claudeMessage struct {
	ID      string               `json:"id"`
	Role    string               `json:"role"`
	Content []claudeContentBlock `json:"content"`
}

type claudeContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	IsError   bool            `json:"is_error"`
}

func (ClaudeParser) ParseLine(line string) []ParsedEvent {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	var l claudeLine
	if err := json.Unmarshal([]byte(line), &l); err != nil {
		return nil
	}

	switch l.Type {
	case "system":
		return []ParsedEvent{{
			Sender:      domain.SenderSystem,
			MessageType: domain.MessageSystemInit,
			Content:     claudeSystemSummary(l),
			Metadata: map[string]any{
				"session_id": l.SessionID,
				"model":      l.Model,
				"tools":      l.Tools,
			},
		}}

	case "assistant":
		if l.Message == nil {
			return nil
		}
		return claudeAssistantEvents(l.Message)

	case "user":
		if l.Message == nil {
			return nil
		}
		return claudeToolResultEvents(l.Message)

	case "result":
		content := l.Result
		if content == "" && l.IsError {
			content = fmt.Sprintf("agent run ended: %s", l.Subtype)
		}
		return []ParsedEvent{{
			Sender:      domain.SenderAssistant,
			MessageType: domain.MessageResult,
			Content:     content,
			Metadata: map[string]any{
				"subtype":         l.Subtype,
				"is_error":        l.IsError,
				"duration_ms":     l.DurationMS,
				"total_cost_usd":  l.TotalCost,
			},
		}}

	default:
		return nil
	}
}

func claudeSystemSummary(l claudeLine) string {
	if l.Subtype != "" {
		return "session " + l.Subtype
	}
	return "session initialized"
}

// claudeAssistantEvents expands one assistant message's content blocks into
// events. Text blocks share the message id as TurnKey so consecutive text
// blocks (within one line, or across lines sharing the same id) coalesce
// into a single growing message; tool_use blocks each become their own,
// non-coalescing, message.
func claudeAssistantEvents(msg *claudeMessage) []ParsedEvent {
	var events []ParsedEvent
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			if block.Text == "" {
				continue
			}
			events = append(events, ParsedEvent{
				Sender:      domain.SenderAssistant,
				MessageType: domain.MessageText,
				Content:     block.Text,
				TurnKey:     msg.ID,
			})
		case "tool_use":
			events = append(events, claudeToolUseEvent(block))
		}
	}
	return events
}

func claudeToolUseEvent(block claudeContentBlock) ParsedEvent {
	var input map[string]any
	_ = json.Unmarshal(block.Input, &input)

	switch block.Name {
	case "Read", "Glob", "Grep", "LS", "NotebookRead", "WebFetch", "WebSearch":
		return ParsedEvent{
			Sender:      domain.SenderTool,
			MessageType: domain.MessageToolRead,
			Content:     fmt.Sprintf("%s(%s)", block.Name, toolReadTarget(input)),
			Metadata:    map[string]any{"tool_use_id": block.ID, "tool_name": block.Name},
		}
	case "Edit", "Write", "NotebookEdit", "MultiEdit":
		filePath, _ := input["file_path"].(string)
		oldText, _ := input["old_string"].(string)
		newText, _ := input["new_string"].(string)
		if block.Name == "Write" {
			newText, _ = input["content"].(string)
			oldText = ""
		}
		diff, added, removed := synthUnifiedDiff(filePath, oldText, newText)
		meta := domain.ToolEditMetadata{FilePath: filePath, DiffUnified: diff, Added: added, Removed: removed}
		return ParsedEvent{
			Sender:      domain.SenderTool,
			MessageType: domain.MessageToolEdit,
			Content:     fmt.Sprintf("%s(%s)", block.Name, filePath),
			Metadata:    meta.AsMap(),
		}
	case "Bash":
		cmd, _ := input["command"].(string)
		return ParsedEvent{
			Sender:      domain.SenderTool,
			MessageType: domain.MessageToolRun,
			Content:     cmd,
			Metadata:    map[string]any{"tool_use_id": block.ID},
		}
	default:
		return ParsedEvent{
			Sender:      domain.SenderTool,
			MessageType: domain.MessageToolRun,
			Content:     fmt.Sprintf("%s(...)", block.Name),
			Metadata:    map[string]any{"tool_use_id": block.ID, "tool_name": block.Name},
		}
	}
}

func toolReadTarget(input map[string]any) string {
	for _, key := range []string{"file_path", "path", "pattern", "query"} {
		if v, ok := input[key].(string); ok {
			return v
		}
	}
	return ""
}

// claudeToolResultEvents surfaces a tool's error result; successful results
// are already represented by the tool_use message and aren't re-emitted.
func claudeToolResultEvents(msg *claudeMessage) []ParsedEvent {
	var events []ParsedEvent
	for _, block := range msg.Content {
		if block.Type != "tool_result" || !block.IsError {
			continue
		}
		events = append(events, ParsedEvent{
			Sender:      domain.SenderTool,
			MessageType: domain.MessageToolRun,
			Content:     "tool error",
			Metadata:    map[string]any{"tool_use_id": block.ToolUseID, "is_error": true},
		})
	}
	return events
}
