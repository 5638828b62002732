package log

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Level defines logging levels ordered by severity.
type Level int8

const (
	// TraceLevel is for per-frame diagnostics.
	TraceLevel Level = iota + 1
	// DebugLevel is for protocol state changes and first sightings.
	DebugLevel
	// InfoLevel is for connection lifecycle events.
	InfoLevel
	// WarnLevel is for recoverable problems such as slow dispatch.
	WarnLevel
	// ErrorLevel is for failures that end a connection.
	ErrorLevel
	// FatalLevel logs then exits the process.
	FatalLevel
)

// String returns the upper case level name.
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "TRACE"
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name case-insensitively.
// Returns InfoLevel for unrecognized input.
func ParseLevel(levelStr string) Level {
	switch strings.ToUpper(levelStr) {
	case "TRACE":
		return TraceLevel
	case "DEBUG":
		return DebugLevel
	case "INFO":
		return InfoLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	case "FATAL":
		return FatalLevel
	}
	return InfoLevel
}

// UnmarshalText lets config files spell levels by name.
func (l *Level) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	lv := ParseLevel(s)
	if lv == InfoLevel && !strings.EqualFold(s, "info") {
		return fmt.Errorf("unknown log level %q", s)
	}
	*l = lv
	return nil
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case TraceLevel:
		return zerolog.TraceLevel
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case FatalLevel:
		return zerolog.FatalLevel
	}
	return zerolog.InfoLevel
}
