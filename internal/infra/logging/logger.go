// Package logging provides Agent Board's structured logger: leveled,
// timestamped lines written to stderr, with debug-level tracing gated behind
// AGENT_BOARD_DEBUG (spec.md §6).
//
// Grounded on the teacher's internal/infra/logging (timestamp/level/category
// line format, minimum-level filtering). Generalized from the teacher's
// two-sink (global file + per-task file) design to a single stderr sink,
// since spec.md §6 places logging on stderr, not in per-task files under the
// state directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Vg34100/agent-board/internal/domain"
)

var _ domain.Logger = (*Logger)(nil)

// Logger writes leveled, timestamped lines to an underlying writer.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level slog.Level
}

// New creates a Logger writing to out at the given minimum level.
func New(out io.Writer, level slog.Level) *Logger {
	return &Logger{out: out, level: level}
}

// ParseLevel parses a log level string into slog.Level, defaulting to Info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// formatArgs renders args as trailing key=value pairs, tolerating an odd
// final argument by rendering it alone.
func formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(args); i += 2 {
		b.WriteByte(' ')
		if i+1 < len(args) {
			fmt.Fprintf(&b, "%v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, "%v", args[i])
		}
	}
	return b.String()
}

// Format: [2025-12-30 09:32:51] [INFO] [category] message key=value
func formatLog(t time.Time, level slog.Level, category, msg string, args []any) string {
	return fmt.Sprintf("[%s] [%s] [%s] %s%s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		category,
		msg,
		formatArgs(args),
	)
}

func (l *Logger) log(level slog.Level, category, msg string, args []any) {
	if level < l.level {
		return
	}
	entry := formatLog(time.Now(), level, category, msg, args)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, entry)
}

func (l *Logger) Debug(category, msg string, args ...any) { l.log(slog.LevelDebug, category, msg, args) }
func (l *Logger) Info(category, msg string, args ...any)  { l.log(slog.LevelInfo, category, msg, args) }
func (l *Logger) Warn(category, msg string, args ...any)  { l.log(slog.LevelWarn, category, msg, args) }
func (l *Logger) Error(category, msg string, args ...any) { l.log(slog.LevelError, category, msg, args) }
