package logging

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// CallerHook adds a short "pkg:file.go:line" caller field to every event.
type CallerHook struct {
	WithColor bool
}

func (c CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	// Run <- Event.msg <- Event.Msg <- call site
	pc, file, line, ok := runtime.Caller(3)
	if !ok {
		return
	}

	var pkg string
	if fn := runtime.FuncForPC(pc); fn != nil {
		pkg = PackageOfFunc(fn.Name())
	}

	e.Str("caller", FormatCaller(pkg, file, line, c.WithColor))
}

// PackageOfFunc trims the function (and receiver) from a fully qualified
// runtime function name.
func PackageOfFunc(name string) string {
	lastSlash := strings.LastIndexByte(name, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}
	dot := strings.IndexByte(name[lastSlash:], '.')
	if dot < 0 {
		return name
	}
	return name[:lastSlash+dot]
}

func FormatCaller(pkg, path string, line int, colorize bool) string {
	file := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		file = path[idx+1:]
	}

	if colorize {
		file = color.New(color.Bold).Sprint(file)
		num := color.New(color.FgHiRed, color.Bold).Sprintf("%d", line)
		sep := color.New(color.Faint).Sprint(":")
		return fmt.Sprintf("%s%s%s%s%s", pkg, sep, file, sep, num)
	}

	return fmt.Sprintf("%s:%s:%d", pkg, file, line)
}

// NewConsoleLogger is the human readable logger used by the cli. Language
// servers must keep stdout clean, so callers pass stderr.
func NewConsoleLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	noColor := color.NoColor
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: noColor}).
		Level(level).
		With().
		Timestamp().
		Logger().
		Hook(CallerHook{WithColor: !noColor})
}

// WithLogger stores logger in ctx for zerolog.Ctx.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}
