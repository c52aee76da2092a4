package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger so the booking packages share one JSON log format
type Logger struct {
	*slog.Logger
}

// New creates a JSON logger on stdout at the given level
func New(level string) *Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter creates a JSON logger writing to w
func NewWithWriter(w io.Writer, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return &Logger{Logger: slog.New(handler)}
}

// Default returns an info-level logger
func Default() *Logger {
	return New("info")
}

// Discard returns a logger that drops everything, for tests
func Discard() *Logger {
	return NewWithWriter(io.Discard, "error")
}

// ParseLevel maps debug|info|warn|error to a slog level; anything else is info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithSession scopes the logger to one booking session
func (l *Logger) WithSession(sessionID string) *Logger {
	return &Logger{Logger: l.With("session_id", sessionID)}
}
