package config

import (
	"log/slog"
	"os"
	"strings"

	"churchadmin/internal/logger/slogpretty"
)

// NewLogger returns a slog.Logger for the given environment and level.
// Production uses the JSON handler, local uses the colourised pretty handler,
// anything else the text handler. Level may be debug, info, warn or error.
func NewLogger(env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	switch env {
	case EnvProduction:
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	case EnvLocal:
		pretty := slogpretty.PrettyHandlerOptions{SlogOpts: opts}
		return slog.New(pretty.NewPrettyHandler(os.Stdout))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
