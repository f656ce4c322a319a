package agentrunner

import (
	"testing"

	"github.com/Vg34100/agent-board/internal/domain"
)

func TestClaudeParserSystemInit(t *testing.T) {
	line := `{"type":"system","subtype":"init","session_id":"abc123","model":"claude-opus"}`
	events := ClaudeParser{}.ParseLine(line)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].MessageType != domain.MessageSystemInit || events[0].Sender != domain.SenderSystem {
		t.Fatalf("unexpected event: %+v", events[0])
	}
	if events[0].Metadata["session_id"] != "abc123" {
		t.Fatalf("expected session_id metadata, got %+v", events[0].Metadata)
	}
}

func TestClaudeParserAssistantTextAndToolUse(t *testing.T) {
	line := `{"type":"assistant","message":{"id":"msg_1","role":"assistant","content":[` +
		`{"type":"text","text":"looking at the file"},` +
		`{"type":"tool_use","id":"tu_1","name":"Read","input":{"file_path":"main.go"}}` +
		`]}}`
	events := ClaudeParser{}.ParseLine(line)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].MessageType != domain.MessageText || events[0].TurnKey != "msg_1" {
		t.Fatalf("unexpected text event: %+v", events[0])
	}
	if events[1].MessageType != domain.MessageToolRead || events[1].Sender != domain.SenderTool {
		t.Fatalf("unexpected tool event: %+v", events[1])
	}
}

func TestClaudeParserEditSynthesizesDiff(t *testing.T) {
	line := `{"type":"assistant","message":{"id":"msg_2","content":[` +
		`{"type":"tool_use","id":"tu_2","name":"Edit","input":{"file_path":"x.go","old_string":"a","new_string":"b\nc"}}` +
		`]}}`
	events := ClaudeParser{}.ParseLine(line)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.MessageType != domain.MessageToolEdit {
		t.Fatalf("expected ToolEdit, got %s", ev.MessageType)
	}
	if ev.Metadata["file_path"] != "x.go" {
		t.Fatalf("expected file_path metadata, got %+v", ev.Metadata)
	}
	if ev.Metadata["added"].(int) != 2 || ev.Metadata["removed"].(int) != 1 {
		t.Fatalf("unexpected diff counts: %+v", ev.Metadata)
	}
}

func TestClaudeParserResult(t *testing.T) {
	line := `{"type":"result","subtype":"success","is_error":false,"result":"done"}`
	events := ClaudeParser{}.ParseLine(line)
	if len(events) != 1 || events[0].MessageType != domain.MessageResult || events[0].Content != "done" {
		t.Fatalf("unexpected result event: %+v", events)
	}
}

func TestClaudeParserIgnoresGarbage(t *testing.T) {
	if events := (ClaudeParser{}).ParseLine("not json at all"); events != nil {
		t.Fatalf("expected nil for unparseable line, got %+v", events)
	}
	if events := (ClaudeParser{}).ParseLine(""); events != nil {
		t.Fatalf("expected nil for blank line, got %+v", events)
	}
}

func TestCodexParserAgentMessage(t *testing.T) {
	line := `{"id":"call_1","msg":{"type":"agent_message","message":"hello there"}}`
	events := CodexParser{}.ParseLine(line)
	if len(events) != 1 || events[0].Content != "hello there" || events[0].MessageType != domain.MessageText {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestCodexParserExecCommand(t *testing.T) {
	begin := `{"id":"call_2","msg":{"type":"exec_command_begin","command":"go test ./...","cwd":"/tmp"}}`
	events := CodexParser{}.ParseLine(begin)
	if len(events) != 1 || events[0].MessageType != domain.MessageToolRun || events[0].Content != "go test ./..." {
		t.Fatalf("unexpected begin events: %+v", events)
	}

	exit := 0
	end := `{"id":"call_2","msg":{"type":"exec_command_end","exit_code":0}}`
	events = CodexParser{}.ParseLine(end)
	if len(events) != 1 || events[0].Metadata["exit_code"] != exit {
		t.Fatalf("unexpected end events: %+v", events)
	}
}

func TestCodexParserTaskComplete(t *testing.T) {
	line := `{"id":"call_3","msg":{"type":"task_complete","last_agent_message":"all done"}}`
	events := CodexParser{}.ParseLine(line)
	if len(events) != 1 || events[0].MessageType != domain.MessageResult || events[0].Content != "all done" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestCodexParserDropsZeroTokenCountUnlessDebug(t *testing.T) {
	line := `{"id":"call_4","msg":{"type":"token_count","input_tokens":0,"output_tokens":0,"total_tokens":0}}`
	if events := (CodexParser{}).ParseLine(line); events != nil {
		t.Fatalf("expected zero token counts dropped by default, got %+v", events)
	}

	events := (CodexParser{Debug: true}).ParseLine(line)
	if len(events) != 1 || events[0].Metadata["debug"] != true {
		t.Fatalf("expected a debug-tagged event, got %+v", events)
	}
}

func TestCodexParserShowsNonZeroTokenCount(t *testing.T) {
	line := `{"id":"call_5","msg":{"type":"token_count","input_tokens":10,"output_tokens":20,"total_tokens":30}}`
	events := (CodexParser{}).ParseLine(line)
	if len(events) != 1 || events[0].Metadata["total_tokens"] != 30 {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestCodexParserUnknownTypeGatedByDebugOrSeverity(t *testing.T) {
	line := `{"id":"call_6","msg":{"type":"some_future_event"}}`
	if events := (CodexParser{}).ParseLine(line); events != nil {
		t.Fatalf("expected unknown event type dropped by default, got %+v", events)
	}
	if events := (CodexParser{Debug: true}).ParseLine(line); len(events) != 1 {
		t.Fatalf("expected unknown event surfaced in debug mode, got %+v", events)
	}

	failLine := `{"id":"call_7","msg":{"type":"sandbox_failure"}}`
	events := (CodexParser{}).ParseLine(failLine)
	if len(events) != 1 || events[0].MessageType != domain.MessageSystemInit {
		t.Fatalf("expected a failure-looking unknown type surfaced even outside debug, got %+v", events)
	}
}

func TestCodexParserNonJSONLineHeuristics(t *testing.T) {
	if events := (CodexParser{}).ParseLine("2026-01-01T00:00:00Z INFO codex_core: starting sandbox"); events != nil {
		t.Fatalf("expected internal log line dropped, got %+v", events)
	}

	shutdown := (CodexParser{}).ParseLine("Shutting down gracefully")
	if len(shutdown) != 1 || shutdown[0].MessageType != domain.MessageSystemInit {
		t.Fatalf("expected shutdown notice as a system event, got %+v", shutdown)
	}

	banner := (CodexParser{}).ParseLine("codex cli v1.2.3 starting up")
	if len(banner) != 1 || banner[0].MessageType != domain.MessageText || banner[0].Sender != domain.SenderAssistant {
		t.Fatalf("expected unrecognized non-JSON text surfaced as assistant text, got %+v", banner)
	}
}

func TestSplitJSONObjectsHandlesConcatenatedLines(t *testing.T) {
	line := `{"a":1}{"b":"x}y"}`
	objs := splitJSONObjects(line)
	if len(objs) != 2 {
		t.Fatalf("expected 2 objects, got %d: %v", len(objs), objs)
	}
	if objs[0] != `{"a":1}` {
		t.Fatalf("unexpected first object: %s", objs[0])
	}
	if objs[1] != `{"b":"x}y"}` {
		t.Fatalf("unexpected second object: %s", objs[1])
	}
}

func TestCodexParserConcatenatedObjects(t *testing.T) {
	line := `{"id":"1","msg":{"type":"agent_message","message":"first"}}{"id":"2","msg":{"type":"agent_message","message":"second"}}`
	events := CodexParser{}.ParseLine(line)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Content != "first" || events[1].Content != "second" {
		t.Fatalf("unexpected content: %+v", events)
	}
}

func TestAccumulatorCoalescesSameTurnKey(t *testing.T) {
	var acc accumulator
	ids := 0
	newID := func() string {
		ids++
		return "id-gen"
	}

	id1, content1, isUpdate1 := acc.apply(ParsedEvent{Sender: domain.SenderAssistant, MessageType: domain.MessageText, Content: "Hello", TurnKey: "t1"}, newID)
	if isUpdate1 {
		t.Fatalf("first event should not be an update")
	}
	id2, content2, isUpdate2 := acc.apply(ParsedEvent{Sender: domain.SenderAssistant, MessageType: domain.MessageText, Content: " world", TurnKey: "t1"}, newID)
	if !isUpdate2 {
		t.Fatalf("second event sharing turn key should be an update")
	}
	if id1 != id2 {
		t.Fatalf("expected same message id across coalesced events")
	}
	if content2 != "Hello world" {
		t.Fatalf("expected coalesced content, got %q (first was %q)", content2, content1)
	}

	_, _, isUpdate3 := acc.apply(ParsedEvent{Sender: domain.SenderTool, MessageType: domain.MessageToolRun, Content: "ls", TurnKey: ""}, newID)
	if isUpdate3 {
		t.Fatalf("non-coalescing event should not be an update")
	}
}
