package agentrunner

import (
	"strings"

	"github.com/Vg34100/agent-board/internal/domain"
)

// ParsedEvent is one normalized message produced by parsing a line of an
// agent CLI's stdout. TurnKey, when non-empty, lets the runner coalesce a
// run of same-key, same-sender, same-type events into a single growing
// AgentMessage instead of appending a new row per event — spec.md's
// delta-coalescing behavior for assistant text turns.
type ParsedEvent struct {
	Sender      domain.Sender
	MessageType domain.MessageType
	Content     string
	Metadata    map[string]any
	TurnKey     string
}

// DialectParser turns one line of raw agent stdout into zero or more
// ParsedEvents. Implementations must tolerate and skip lines that don't
// parse as their dialect (blank lines, banners, partial writes) rather than
// erroring, since a misbehaving or updated CLI must not crash the runner.
type DialectParser interface {
	ParseLine(line string) []ParsedEvent
}

// splitJSONObjects splits a line that may contain multiple concatenated JSON
// objects (observed from the Codex CLI under load) into individual object
// strings, by counting brace depth and respecting string literals and
// escapes. Grounded on the original's split_json_objects.
func splitJSONObjects(line string) []string {
	var objects []string
	depth := 0
	inString := false
	escaped := false
	start := -1

	for i, r := range line {
		if start == -1 {
			if r == '{' {
				start = i
				depth = 1
				inString = false
				escaped = false
			}
			continue
		}

		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					objects = append(objects, line[start:i+1])
					start = -1
				}
			}
		}
	}
	return objects
}

// accumulator tracks the currently open coalescing target for one process's
// parsed output stream, so a run of same-key events can be merged into one
// growing AgentMessage instead of many small ones.
type accumulator struct {
	messageID   string
	turnKey     string
	sender      domain.Sender
	msgType     domain.MessageType
	lastContent string
}

// apply merges ev into the accumulator, returning the message id and full
// content to persist (either a freshly started message or an updated
// running one) and whether this is a continuation of an already-persisted
// message (update) versus a brand new one (insert).
func (a *accumulator) apply(ev ParsedEvent, newID func() string) (id string, content string, isUpdate bool) {
	if ev.TurnKey != "" && a.turnKey == ev.TurnKey && a.sender == ev.Sender && a.msgType == ev.MessageType {
		a.lastContent += ev.Content
		return a.messageID, a.lastContent, true
	}
	a.messageID = newID()
	a.turnKey = ev.TurnKey
	a.sender = ev.Sender
	a.msgType = ev.MessageType
	a.lastContent = ev.Content
	return a.messageID, a.lastContent, false
}

// reset clears the accumulator, closing whatever turn was open. Called
// whenever a non-coalescing event (tool use, system, result) interrupts a
// run of text deltas.
func (a *accumulator) reset() {
	*a = accumulator{}
}

// synthUnifiedDiff builds a minimal unified-style diff between oldText and
// newText, good enough for display purposes (not a minimal-edit-distance
// diff). Whole-file writes (oldText == "") render as an all-additions diff.
func synthUnifiedDiff(filePath, oldText, newText string) (diff string, added, removed int) {
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	var b strings.Builder
	b.WriteString("--- " + filePath + "\n")
	b.WriteString("+++ " + filePath + "\n")

	for _, l := range oldLines {
		b.WriteString("-" + l + "\n")
		removed++
	}
	for _, l := range newLines {
		b.WriteString("+" + l + "\n")
		added++
	}
	return b.String(), added, removed
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
