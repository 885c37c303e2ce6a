package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger and tags every record with a component.
type Logger struct {
	*slog.Logger
	component string
}

type LogConfig struct {
	Level     slog.Level
	Component string
	Output    io.Writer
}

// NewLogger builds a text logger. Output defaults to stderr so it never
// mixes with command output.
func NewLogger(cfg LogConfig) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.Level})

	component := cfg.Component
	if component == "" {
		component = "cxz"
	}

	return &Logger{
		Logger:    slog.New(handler).With("component", component),
		component: component,
	}
}

// DiscardLogger drops everything; used by tests.
func DiscardLogger() *Logger {
	return &Logger{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		component: "discard",
	}
}

// WithComponent returns a child logger for a sub-component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With("subcomponent", component),
		component: component,
	}
}

func (l *Logger) Component() string {
	return l.component
}

// ParseLogLevel maps a config value to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
