package config

import (
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	slogmulti "github.com/samber/slog-multi"
)

// MaxLogValueLen caps every string attribute and message written to the logs.
const MaxLogValueLen = 200

// SetupLogger creates the process logger: text or JSON to stderr, plus a JSON
// copy to LogFile when one is configured. Returns the logger and a cleanup
// function that closes the file.
func SetupLogger(cfg Config) (*slog.Logger, func() error) {
	return setupLogger(os.Stderr, cfg)
}

func setupLogger(stderr io.Writer, cfg Config) (*slog.Logger, func() error) {
	opts := handlerOptions(cfg.LogLevel)
	console := consoleHandler(stderr, cfg.LogFormat, opts)

	if cfg.LogFile == "" {
		return slog.New(console), func() error { return nil }
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		logger := slog.New(console)
		logger.Error("failed to open log file, using stderr only", "error", err, "file", cfg.LogFile)
		return logger, func() error { return nil }
	}

	logger := slog.New(slogmulti.Fanout(console, slog.NewJSONHandler(file, opts)))
	return logger, file.Close
}

// SetupLoggerWithWriters creates a fanout logger with custom writers (for testing).
func SetupLoggerWithWriters(console, file io.Writer, level slog.Level) *slog.Logger {
	opts := handlerOptions(level)
	return slog.New(slogmulti.Fanout(
		slog.NewTextHandler(console, opts),
		slog.NewJSONHandler(file, opts),
	))
}

func consoleHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func handlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{Level: level, ReplaceAttr: truncateAttr}
}

// truncateAttr shortens string values, the message included, to MaxLogValueLen runes.
func truncateAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	s := a.Value.String()
	if utf8.RuneCountInString(s) <= MaxLogValueLen {
		return a
	}
	return slog.String(a.Key, string([]rune(s)[:MaxLogValueLen]))
}
