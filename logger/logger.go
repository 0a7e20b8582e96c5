// Package logger installs a tint-formatted slog logger as the process
// default and exposes level helpers for the CLI.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/lmittmann/tint"
)

var (
	once   sync.Once
	logger *slog.Logger
)

type Options struct {
	Level      slog.Leveler // slog.LevelInfo, slog.LevelDebug, etc.
	Writer     io.Writer    // default: os.Stderr
	TimeFormat string       // default: 15:04:05
	NoColor    bool
}

// Init builds the handler and sets it as the slog default. Only the first
// call has any effect.
func Init(opts *Options) {
	once.Do(func() {
		if opts == nil {
			opts = &Options{}
		}
		logger = New(opts)
		slog.SetDefault(logger)
	})
}

// New returns a tint logger without touching the global default.
func New(opts *Options) *slog.Logger {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	timeFormat := opts.TimeFormat
	if timeFormat == "" {
		timeFormat = "15:04:05"
	}
	return slog.New(tint.NewHandler(writer, &tint.Options{
		Level:      opts.Level,
		TimeFormat: timeFormat,
		NoColor:    opts.NoColor,
	}))
}

// L returns the installed logger, or slog.Default before Init.
func L() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Info logs at info level.
func Info(msg string, args ...any) { L().Info(msg, args...) }

// Debug logs at debug level.
func Debug(msg string, args ...any) { L().Debug(msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { L().Warn(msg, args...) }

// Error logs at error level.
func Error(msg string, args ...any) { L().Error(msg, args...) }

// With returns the installed logger with args attached.
func With(args ...any) *slog.Logger { return L().With(args...) }

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logger: unknown level %q", s)
}
