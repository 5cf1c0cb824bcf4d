package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Encoding  string `envconfig:"ENCODING" default:"console"`
	Level     string `envconfig:"LEVEL" default:"info"`
	AddSource bool   `envconfig:"ADD_SOURCE" default:"false"`
}

// New builds the service logger; every record carries the app attribute
func New(app string, cfg *Config) *slog.Logger {
	logger, err := build(app, cfg, os.Stdout, os.Stderr)
	if err != nil {
		panic(fmt.Errorf("invalid logger config: %w", err))
	}
	return logger
}

// Nop logger for tests and optional components
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func build(app string, cfg *Config, jsonOut, consoleOut io.Writer) (*slog.Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "console"
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch encoding {
	case "json":
		handler = slog.NewJSONHandler(jsonOut, opts)
	case "console":
		handler = slog.NewTextHandler(consoleOut, opts)
	default:
		return nil, fmt.Errorf("encoding %s is not supported", encoding)
	}

	return slog.New(handler).With("app", app), nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("level %s is not supported", level)
	}
}
