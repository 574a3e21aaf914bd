package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"pkghub/internal/config"
)

const logLevelEnvKey = "PKGHUB_LOG_LEVEL"

// levelSource names where a log level setting came from.
type levelSource string

const (
	sourceFlag    levelSource = "flag"
	sourceEnv     levelSource = "env"
	sourceConfig  levelSource = "config"
	sourceDefault levelSource = "default"
)

// configureLoggerForCLI installs the default slog logger. An invalid flag is
// an error; an invalid env or config value falls back to the default level
// and yields a warning line for stderr.
func configureLoggerForCLI(flagLevel, configLevel string) (string, error) {
	envLevel := os.Getenv(logLevelEnvKey)
	raw, source := selectedLogLevel(flagLevel, envLevel, configLevel)

	level, err := parseLogLevel(raw)
	if err == nil {
		slog.SetDefault(newLogger(os.Stderr, level))
		return "", nil
	}

	switch source {
	case sourceFlag:
		return "", fmt.Errorf("invalid --log-level %q", flagLevel)
	case sourceEnv:
		slog.SetDefault(newLogger(os.Stderr, slog.LevelDebug))
		return fmt.Sprintf("warning: invalid %s=%q; defaulting to %s", logLevelEnvKey, envLevel, config.DefaultLogLevel), nil
	default:
		slog.SetDefault(newLogger(os.Stderr, slog.LevelDebug))
		return fmt.Sprintf("warning: invalid log_level=%q; defaulting to %s", configLevel, config.DefaultLogLevel), nil
	}
}

func selectedLogLevel(flagLevel, envLevel, configLevel string) (string, levelSource) {
	candidates := []struct {
		raw    string
		source levelSource
	}{
		{flagLevel, sourceFlag},
		{envLevel, sourceEnv},
		{configLevel, sourceConfig},
	}
	for _, c := range candidates {
		if strings.TrimSpace(c.raw) != "" {
			return c.raw, c.source
		}
	}
	return "", sourceDefault
}

func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "":
		return slog.LevelDebug, nil
	case "warning":
		value = "warn"
	}

	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelDebug, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
