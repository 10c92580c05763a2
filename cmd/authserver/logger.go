package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

var logLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// CleanupFunc releases resources opened by the logger.
type CleanupFunc func() error

// initDefaultLogger installs the slog default handler from the root flags.
func initDefaultLogger(c *cli.Command) (CleanupFunc, error) {
	deferred := func() error { return nil }

	level, ok := logLevels[strings.ToLower(c.String("log-level"))]
	if !ok {
		return deferred, fmt.Errorf("invalid log level: %s", c.String("log-level"))
	}

	w := os.Stderr
	if path := c.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return deferred, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		deferred = f.Close
	}

	switch strings.ToLower(c.String("log-format")) {
	case "text":
		setColoredLogger(w, level, c.Bool("no-color"))
	case "json":
		setJSONLogger(w, level)
	default:
		return deferred, fmt.Errorf("invalid log format: %s", c.String("log-format"))
	}
	return deferred, nil
}

func setColoredLogger(w *os.File, level slog.Level, forceNoColor bool) {
	slog.SetDefault(slog.New(
		tint.NewHandler(
			colorable.NewColorable(w),
			&tint.Options{
				Level:      level,
				TimeFormat: time.TimeOnly,
				NoColor:    forceNoColor || os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(w.Fd()),
			},
		),
	))
}

func setJSONLogger(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource: level == slog.LevelDebug,
			Level:     level,
		}),
	))
}
