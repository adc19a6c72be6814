// Package observability carries structured events from the conversation
// store, the transport and the widget to logs and metrics. Levels use
// OpenTelemetry SeverityNumber values, so an Event maps onto an OTel log
// record field for field.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Level is an event severity on the OTel SeverityNumber scale (1-24).
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8)
	LevelInfo    Level = 9  // OTel INFO (9-12)
	LevelWarning Level = 13 // OTel WARN (13-16)
	LevelError   Level = 17 // OTel ERROR (17-20)
)

// String returns the OTel severity text for the level's range.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// ParseLevel accepts the severity texts produced by String, case-insensitive,
// plus "verbose" and "warning".
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return 1, nil
	case "DEBUG", "VERBOSE":
		return LevelVerbose, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return 21, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// SlogLevel maps the level onto slog's four levels.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType names what happened, dot-separated by subsystem
// ("conversation.created", "widget.send.failed").
type EventType string

// Event is one observation. Type maps to the OTel EventName, Source to the
// instrumentation scope and Data to attributes.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// NewEvent builds an Event stamped with the current time.
func NewEvent(typ EventType, level Level, source string, data map[string]any) Event {
	return Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	}
}

// Observer receives events. Implementations must be safe for concurrent use
// and must not block for long: the store calls them on its hot path.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
